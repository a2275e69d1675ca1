package service

import (
	"regexp"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	BoardCodePrefix = "NXB"
	boardCodeLength = 4
	boardCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// go-nanoid draws no random bytes for lengths under 5, so generate
	// longer ids and keep the first boardCodeLength characters.
	nanoidLength = 8
)

var boardCodePattern = regexp.MustCompile(`^NXB[A-Z0-9]{4}$`)

// NewBoardCodeGenerator returns a generator of join codes such as "NXB7QK2".
// Codes are random; uniqueness is left to the boards_board_code_key constraint.
func NewBoardCodeGenerator() (func() string, error) {
	gen, err := nanoid.CustomASCII(boardCodeChars, nanoidLength)
	if err != nil {
		return nil, err
	}
	return func() string { return BoardCodePrefix + gen()[:boardCodeLength] }, nil
}

func IsValidBoardCode(code string) bool {
	return boardCodePattern.MatchString(code)
}
