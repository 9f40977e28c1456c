package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/pkg/export"
)

func TestRelatorioDatasetPreencheColunas(t *testing.T) {
	prazo := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	protocolo := models.ProtocoloDetail{
		Protocolo: models.Protocolo{
			Numero:    "000042/2026",
			CreatedAt: time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC),
			Prazo:     &prazo,
		},
		SolicitanteNome:      "João da Silva",
		SolicitanteDocumento: "11144477735",
		SolicitacaoNome:      "Poda de árvore",
		SecretariaNome:       "Meio Ambiente",
		SetorNome:            "Atendimento",
		StatusNome:           "Aberto",
	}

	dataset := buildRelatorioDataset([]models.ProtocoloDetail{protocolo})
	require.Len(t, dataset.Rows, 1)
	row := dataset.Rows[0]
	assert.Equal(t, "000042/2026", row["Número"])
	assert.Equal(t, "10/03/2026 09:15", row["Abertura"])
	assert.Equal(t, "111.444.777-35", row["Documento"])
	assert.Equal(t, "Meio Ambiente", row["Secretaria"])
	assert.Equal(t, "01/04/2026", row["Prazo"])

	csv, err := export.NewCSVExporter().Render(dataset)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "000042/2026")
	assert.Contains(t, string(csv), "111.444.777-35")
}

func TestRelatorioDatasetSemPrazo(t *testing.T) {
	protocolo := models.ProtocoloDetail{
		Protocolo: models.Protocolo{Numero: "000043/2026", CreatedAt: time.Now()},
	}
	dataset := buildRelatorioDataset([]models.ProtocoloDetail{protocolo})
	require.Len(t, dataset.Rows, 1)
	assert.Empty(t, dataset.Rows[0]["Prazo"])
}
