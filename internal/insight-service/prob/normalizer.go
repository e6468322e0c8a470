package prob

import (
	"fmt"
	"math"
)

// Campos de score por modelo presentes no racecard.
// Os valores crus vêm de modelos independentes e NÃO somam 1 dentro da corrida.
const (
	FieldLR       = "lr"
	FieldRF       = "rf"
	FieldGBM      = "gbm"
	FieldXGB      = "xgb"
	FieldMLP      = "mlp"
	FieldEnsemble = "ensemble"
)

// Fields lista os campos normalizáveis na ordem de exibição.
func Fields() []string {
	return []string{FieldLR, FieldRF, FieldGBM, FieldXGB, FieldMLP, FieldEnsemble}
}

// Entry é a visão mínima de um runner que o normalizador precisa.
type Entry struct {
	HorseID   string
	HorseName string
	LR        float64
	RF        float64
	GBM       float64
	XGB       float64
	MLP       float64
	Ensemble  float64
}

// Normalized é um Entry acrescido da probabilidade de ensemble normalizada
// dentro da corrida, pronta para exibição.
type Normalized struct {
	Entry
	NormalizedEnsemble float64 `json:"normalized_ensemble"`
}

// raw devolve o score cru do campo pedido; score ausente/NaN vale 0.
func raw(e Entry, field string) float64 {
	var v float64
	switch field {
	case FieldLR:
		v = e.LR
	case FieldRF:
		v = e.RF
	case FieldGBM:
		v = e.GBM
	case FieldXGB:
		v = e.XGB
	case FieldMLP:
		v = e.MLP
	case FieldEnsemble:
		v = e.Ensemble
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeField converte os scores crus de um campo numa distribuição de
// probabilidade sobre a corrida: raw/sum quando sum > 0, senão 0.
// Nenhum runner é descartado.
func NormalizeField(entries []Entry, field string) map[string]float64 {
	out := make(map[string]float64, len(entries))
	var sum float64
	for _, e := range entries {
		sum += raw(e, field)
	}
	for _, e := range entries {
		if sum > 0 {
			out[e.HorseID] = raw(e, field) / sum
		} else {
			out[e.HorseID] = 0
		}
	}
	return out
}

// NormalizeAll normaliza cada campo de modelo de forma independente.
// Resultado: campo -> horseID -> probabilidade.
func NormalizeAll(entries []Entry) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(Fields()))
	for _, f := range Fields() {
		out[f] = NormalizeField(entries, f)
	}
	return out
}

// WithNormalizedEnsemble devolve os entries acrescidos do ensemble
// normalizado, na mesma ordem de entrada.
func WithNormalizedEnsemble(entries []Entry) []Normalized {
	norm := NormalizeField(entries, FieldEnsemble)
	out := make([]Normalized, 0, len(entries))
	for _, e := range entries {
		out = append(out, Normalized{Entry: e, NormalizedEnsemble: norm[e.HorseID]})
	}
	return out
}

// TierColor classifica a probabilidade em 3 faixas de exibição.
func TierColor(p float64) string {
	switch {
	case p >= 0.25:
		return "green"
	case p >= 0.12:
		return "amber"
	default:
		return "grey"
	}
}

// Stars converte a probabilidade numa nota de 1 a 5 estrelas.
func Stars(p float64) int {
	switch {
	case p >= 0.30:
		return 5
	case p >= 0.22:
		return 4
	case p >= 0.14:
		return 3
	case p >= 0.08:
		return 2
	default:
		return 1
	}
}

// FormatPct formata a probabilidade como percentual com 1 casa decimal.
func FormatPct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
