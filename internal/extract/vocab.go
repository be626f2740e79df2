package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocab holds the word tables the heuristics run on. They are data, not code:
// a deployment can override any table from a YAML file without touching the
// extraction logic.
type Vocab struct {
	// Stopwords are ordering verbs, politeness particles and unit words
	// dropped when isolating the dish phrase.
	Stopwords []string `yaml:"stopwords"`
	// Numbers maps spelled-out quantity words to their value.
	Numbers map[string]int `yaml:"numbers"`
	// Craving terms mark a generic "I want something ..." request rather
	// than a specific dish order.
	Craving []string `yaml:"craving"`
	// Recommend terms select the recommendation response template.
	Recommend []string `yaml:"recommend"`
	// CancelWords are stripped from a cancellation utterance before dish
	// lookup.
	CancelWords []string `yaml:"cancel_words"`
	// AddVerbs distinguish "add two more" from "make it two" in quantity
	// updates.
	AddVerbs []string `yaml:"add_verbs"`
}

// DefaultVocab is the compiled-in table set for the Hòa Viên deployment,
// covering the Vietnamese the clientele types plus common English.
func DefaultVocab() Vocab {
	return Vocab{
		Stopwords: []string{
			"add", "order", "cho", "tôi", "toi", "tui", "mình", "minh", "em",
			"đặt", "dat", "muốn", "muon", "lấy", "lay", "gọi", "goi", "mua",
			"ăn", "an", "uống", "uong", "thêm", "them", "đổi", "thành",
			"món", "mon",
			"phần", "phan", "suất", "suat", "ly", "cốc", "coc", "cup",
			"bát", "bat", "tô", "to", "đĩa", "dia", "portion", "please",
			"xin", "vui", "lòng", "long", "nhé", "nhe", "nha", "ạ", "a",
			"ơi", "oi", "với", "voi", "và", "va", "cái", "cai", "giúp",
			"giup", "giùm", "gium", "i", "want", "would", "like", "me",
			"some", "get", "have", "the", "of",
		},
		Numbers: map[string]int{
			"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
			"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
			"dozen": 10,
			"một": 1, "mot": 1, "hai": 2, "ba": 3, "bốn": 4, "bon": 4,
			"năm": 5, "nam": 5, "sáu": 6, "sau": 6, "bảy": 7, "bay": 7,
			"tám": 8, "tam": 8, "chín": 9, "chin": 9, "mười": 10, "muoi": 10,
			"tá": 10, "ta": 10,
		},
		Craving: []string{
			"cay", "chua", "ngọt", "ngot", "đắng", "dang", "béo", "beo",
			"spicy", "sour", "sweet", "something", "gì", "nào",
			"recommend", "suggest", "gợi ý", "goi y", "signature",
			"đặc sản", "dac san", "đặc trưng", "dac trung", "nổi tiếng",
			"noi tieng",
		},
		Recommend: []string{
			"cay", "chua", "ngọt", "ngot", "ngon", "thèm", "them",
			"khẩu vị", "khau vi", "gợi ý", "goi y", "recommend", "suggest",
			"spicy", "sweet", "sour", "đặc sản", "dac san", "signature",
			"nên ăn", "nen an", "nên thử", "nen thu",
		},
		CancelWords: []string{
			"cancel", "remove", "delete", "hủy", "huy", "huỷ", "bỏ", "bo",
			"xóa", "xoa", "xoá", "không", "khong", "đừng", "dung", "thôi",
			"thoi", "khỏi", "khoi", "món", "mon", "phần", "phan", "nữa",
			"nua", "đi", "di", "cho", "tôi", "toi", "mình", "minh", "ơi",
			"oi", "nhé", "nhe", "giúp", "giup",
		},
		AddVerbs: []string{"thêm", "them", "add", "more", "nữa", "nua", "tăng", "tang"},
	}
}

// LoadVocab reads a YAML vocabulary file. Tables absent from the file keep
// their defaults.
func LoadVocab(path string) (Vocab, error) {
	v := DefaultVocab()
	raw, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read vocab file: %w", err)
	}

	var override Vocab
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return v, fmt.Errorf("parse vocab file: %w", err)
	}

	if len(override.Stopwords) > 0 {
		v.Stopwords = override.Stopwords
	}
	if len(override.Numbers) > 0 {
		v.Numbers = override.Numbers
	}
	if len(override.Craving) > 0 {
		v.Craving = override.Craving
	}
	if len(override.Recommend) > 0 {
		v.Recommend = override.Recommend
	}
	if len(override.CancelWords) > 0 {
		v.CancelWords = override.CancelWords
	}
	if len(override.AddVerbs) > 0 {
		v.AddVerbs = override.AddVerbs
	}
	return v, nil
}
