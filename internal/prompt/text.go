package prompt

import (
	"math"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// tokenEncoding is the BPE used for token estimates. Claude's tokenizer is not
// published; cl100k_base is close enough for sizing prompts.
const tokenEncoding = "cl100k_base"

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountWords returns the number of whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateTokens returns the token count of text. It uses the tiktoken BPE when
// it can be loaded and falls back to a word-based estimate otherwise.
// Setting PROMPTEVAL_TOKENIZER=off forces the fallback (no network fetch).
func EstimateTokens(text string) int {
	if enc := loadEncoder(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimateTokensByWords(text)
}

func loadEncoder() *tiktoken.Tiktoken {
	encoderOnce.Do(func() {
		if strings.EqualFold(os.Getenv("PROMPTEVAL_TOKENIZER"), "off") {
			return
		}
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			log.Debug().Err(err).Str("encoding", tokenEncoding).Msg("tokenizer unavailable, using word estimate")
			return
		}
		encoder = enc
	})
	return encoder
}

// estimateTokensByWords applies a 1.3x multiplier to the word count.
func estimateTokensByWords(text string) int {
	words := strings.Fields(strings.TrimSpace(text))
	return int(math.Ceil(float64(len(words)) * 1.3))
}
