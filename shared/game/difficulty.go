package game

import "github.com/hectorgimenez/d2go/pkg/data/difficulty"

// Difficulty é a dificuldade do d2go. Junto com a seed do mapa, define qual
// variante de cada área foi gerada.
type Difficulty = difficulty.Difficulty

// difficulties fixa a ordem usada no fio e nos bancos (0 = Normal).
var difficulties = [...]Difficulty{difficulty.Normal, difficulty.Nightmare, difficulty.Hell}

// DifficultyIndex retorna a posição da dificuldade (0..2). Valores desconhecidos viram Normal.
func DifficultyIndex(d Difficulty) int {
	for i, v := range difficulties {
		if v == d {
			return i
		}
	}
	return 0
}

// DifficultyAt é o inverso de DifficultyIndex.
func DifficultyAt(i int) (Difficulty, bool) {
	if i < 0 || i >= len(difficulties) {
		return difficulties[0], false
	}
	return difficulties[i], true
}

// DifficultyName retorna o nome exibido.
func DifficultyName(d Difficulty) string {
	switch d {
	case difficulty.Normal:
		return "Normal"
	case difficulty.Nightmare:
		return "Nightmare"
	case difficulty.Hell:
		return "Hell"
	}
	return "Unknown"
}
