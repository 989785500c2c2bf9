package gacha

import (
	"errors"

	"github.com/xtding233/prize-gacha/internal/catalog"
)

var ErrInvalidWeight = errors.New("invalid prize weight; must be > 0")

func validateWeights(prizes []catalog.Prize) error {
	for _, p := range prizes {
		if p.Weight <= 0 {
			return ErrInvalidWeight
		}
	}
	return nil
}
