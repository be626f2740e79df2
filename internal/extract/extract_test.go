package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractDigitQuantityWins(t *testing.T) {
	e := New(DefaultVocab())

	phrase, qty := e.Extract("add 2 pho bo")
	if qty != 2 {
		t.Fatalf("quantity: want=2 got=%d", qty)
	}
	if phrase != "pho bo" {
		t.Fatalf("phrase: want=%q got=%q", "pho bo", phrase)
	}

	// A digit run beats a spelled-out number anywhere in the utterance.
	_, qty = e.Extract("cho tôi ba phần, à không, 5 phần phở bò")
	if qty != 5 {
		t.Fatalf("quantity: want=5 got=%d", qty)
	}
}

func TestExtractSpelledNumbers(t *testing.T) {
	e := New(DefaultVocab())

	phrase, qty := e.Extract("cho tôi hai phần phở bò")
	if qty != 2 {
		t.Fatalf("quantity: want=2 got=%d", qty)
	}
	if phrase != "phở bò" {
		t.Fatalf("phrase: want=%q got=%q", "phở bò", phrase)
	}

	if _, qty = e.Extract("ten beef noodle soup please"); qty != 10 {
		t.Fatalf("quantity: want=10 got=%d", qty)
	}
}

func TestExtractDefaultsToOne(t *testing.T) {
	e := New(DefaultVocab())
	phrase, qty := e.Extract("đặt bún chả nhé")
	if qty != 1 {
		t.Fatalf("quantity: want=1 got=%d", qty)
	}
	if phrase != "bún chả" {
		t.Fatalf("phrase: want=%q got=%q", "bún chả", phrase)
	}
}

func TestExtractCanLeaveEmptyPhrase(t *testing.T) {
	e := New(DefaultVocab())
	phrase, _ := e.Extract("cho tôi 2 phần")
	if phrase != "" {
		t.Fatalf("phrase: want empty got=%q", phrase)
	}
}

func TestStripCancelWords(t *testing.T) {
	e := New(DefaultVocab())
	if got := e.StripCancelWords("hủy món phở bò đi"); got != "phở bò" {
		t.Fatalf("strip: want=%q got=%q", "phở bò", got)
	}
	if got := e.StripCancelWords("cancel pho bo"); got != "pho bo" {
		t.Fatalf("strip: want=%q got=%q", "pho bo", got)
	}
}

func TestCravingAndRecommendTerms(t *testing.T) {
	e := New(DefaultVocab())

	if !e.HasCravingTerm("I want something spicy") {
		t.Fatalf("craving: want=true for generic request")
	}
	if !e.HasCravingTerm("có món gì cay cay không") {
		t.Fatalf("craving: want=true for vietnamese craving")
	}
	if e.HasCravingTerm("phở bò") {
		t.Fatalf("craving: want=false for a plain dish name")
	}

	if !e.WantsRecommendation("gợi ý cho mình món ngon") {
		t.Fatalf("recommend: want=true")
	}
	if e.WantsRecommendation("mấy giờ mở cửa") {
		t.Fatalf("recommend: want=false for factual question")
	}
}

func TestHasAddVerb(t *testing.T) {
	e := New(DefaultVocab())
	if !e.HasAddVerb("thêm 2 phần phở bò") {
		t.Fatalf("add verb: want=true")
	}
	if e.HasAddVerb("đổi thành 2 phần phở bò") {
		t.Fatalf("add verb: want=false")
	}
}

func TestLoadVocabOverridesOnlyProvidedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	content := "add_verbs:\n  - extra\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}

	v, err := LoadVocab(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(v.AddVerbs) != 1 || v.AddVerbs[0] != "extra" {
		t.Fatalf("add verbs override: got=%v", v.AddVerbs)
	}
	if len(v.Stopwords) == 0 || len(v.Numbers) == 0 {
		t.Fatalf("untouched tables must keep defaults")
	}
}

func TestLoadVocabMissingFileKeepsDefaults(t *testing.T) {
	v, err := LoadVocab(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("want error for missing file")
	}
	if len(v.Stopwords) == 0 {
		t.Fatalf("defaults must be returned alongside the error")
	}
}
