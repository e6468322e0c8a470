package movers

import (
	"fmt"
	"math"
)

// Tabela fixa de frações de odds britânicas: display -> (decimal - 1).
// Mesma escada usada nos boards das casas; a conversão procura o vizinho
// mais próximo dentro da tolerância.
var fractionalLadder = []struct {
	display string
	value   float64
}{
	{"1/5", 0.2},
	{"1/4", 0.25},
	{"3/10", 0.3},
	{"1/3", 1.0 / 3.0},
	{"2/5", 0.4},
	{"4/9", 4.0 / 9.0},
	{"1/2", 0.5},
	{"8/15", 8.0 / 15.0},
	{"4/7", 4.0 / 7.0},
	{"8/13", 8.0 / 13.0},
	{"4/6", 4.0 / 6.0},
	{"8/11", 8.0 / 11.0},
	{"4/5", 0.8},
	{"5/6", 5.0 / 6.0},
	{"10/11", 10.0 / 11.0},
	{"EVS", 1.0},
	{"11/10", 1.1},
	{"6/5", 1.2},
	{"5/4", 1.25},
	{"11/8", 1.375},
	{"6/4", 1.5},
	{"13/8", 1.625},
	{"7/4", 1.75},
	{"15/8", 1.875},
	{"2/1", 2.0},
	{"9/4", 2.25},
	{"5/2", 2.5},
	{"11/4", 2.75},
	{"3/1", 3.0},
	{"100/30", 10.0 / 3.0},
	{"7/2", 3.5},
	{"4/1", 4.0},
	{"9/2", 4.5},
	{"5/1", 5.0},
	{"11/2", 5.5},
	{"6/1", 6.0},
	{"13/2", 6.5},
	{"7/1", 7.0},
	{"15/2", 7.5},
	{"8/1", 8.0},
	{"9/1", 9.0},
	{"10/1", 10.0},
	{"11/1", 11.0},
	{"12/1", 12.0},
	{"14/1", 14.0},
	{"16/1", 16.0},
	{"18/1", 18.0},
	{"20/1", 20.0},
	{"25/1", 25.0},
	{"33/1", 33.0},
	{"40/1", 40.0},
	{"50/1", 50.0},
	{"66/1", 66.0},
	{"100/1", 100.0},
}

// fractionalTolerance é a distância máxima aceita até uma fração da tabela.
const fractionalTolerance = 0.15

// ToFractional converte uma odd decimal no display fracionário britânico.
// Decimal <= 1.0 não tem fração positiva e degrada para "EVS"; fora da
// tolerância da escada, arredonda para N/1.
func ToFractional(decimalOdds float64) string {
	frac := decimalOdds - 1.0
	if frac <= 0 {
		return "EVS"
	}

	best := ""
	bestDist := math.MaxFloat64
	for _, f := range fractionalLadder {
		d := math.Abs(f.value - frac)
		if d < bestDist {
			bestDist = d
			best = f.display
		}
	}
	if bestDist <= fractionalTolerance {
		return best
	}

	return fmt.Sprintf("%d/1", int(math.Round(frac)))
}
