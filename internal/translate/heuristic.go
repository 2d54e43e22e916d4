package translate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// profile recognizes text already written in a target language: it must
// contain at least one language-specific letter and one common function word.
type profile struct {
	letters string
	words   map[string]struct{}
	lower   cases.Caser
}

var profiles = map[language.Base][2]string{
	mustBase("tr"): {"çğıöşüÇĞİÖŞÜ", "bir ve ile için olan bu da de mi ki ama hem ya"},
	mustBase("de"): {"äöüßÄÖÜ", "und der die das ist mit für nicht ein eine auch"},
	mustBase("es"): {"áéíóúñ¿¡ÁÉÍÓÚÑ", "el la los las y con para por una es que del"},
	mustBase("fr"): {"àâçéèêëîïôûùœÀÂÇÉÈÊÎÔÛ", "le la les et avec pour une est des du que pas"},
}

func mustBase(s string) language.Base {
	b, err := language.ParseBase(s)
	if err != nil {
		panic(err)
	}
	return b
}

// profileFor returns the detection profile of tag, or nil when none exists.
func profileFor(tag language.Tag) *profile {
	base, _ := tag.Base()
	p, ok := profiles[base]
	if !ok {
		return nil
	}
	words := map[string]struct{}{}
	for _, w := range strings.Fields(p[1]) {
		words[w] = struct{}{}
	}
	return &profile{letters: p[0], words: words, lower: cases.Lower(tag)}
}

// matches reports whether text already looks like the target language.
func (p *profile) matches(text string) bool {
	if p == nil || !strings.ContainsAny(text, p.letters) {
		return false
	}
	lowered := p.lower.String(text)
	for _, w := range strings.FieldsFunc(lowered, isSeparator) {
		if _, ok := p.words[w]; ok {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	case r < 128:
		return true
	}
	return strings.ContainsRune(" \t\n\r.,;:!?\"'()[]{}«»“”‘’…-–—/#@", r)
}
