package movers

import (
	"strconv"
	"strings"
)

// RaceClockMinutes converte o off_time do racecard ("2:30", "10:15") em
// minutos desde meia-noite para ordenação dentro do dia.
//
// Heurística herdada do racecard: horas 1-9 são tratadas como tarde/noite
// (+12h); 10, 11 e 12 ficam como estão. Corridas antes de 01:00 ou entradas
// já em 24h saem fora de ordem — comportamento documentado, não corrigir
// aqui sem trocar o formato do feed.
func RaceClockMinutes(offTime string) int {
	hhmm := strings.SplitN(strings.TrimSpace(offTime), ":", 2)
	if len(hhmm) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(hhmm[0])
	m, err2 := strconv.Atoi(strings.TrimSpace(hhmm[1]))
	if err1 != nil || err2 != nil {
		return 0
	}
	if h >= 1 && h <= 9 {
		h += 12
	}
	return h*60 + m
}

// IsUpcoming diz se uma corrida com o off_time dado ainda não largou,
// comparando contra "agora" em minutos desde meia-noite (mesma heurística).
func IsUpcoming(offTime string, nowMinutes int) bool {
	return RaceClockMinutes(offTime) >= nowMinutes
}
