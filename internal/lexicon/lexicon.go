package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon bundles the fixed word lists the extraction pipeline depends on.
// A Lexicon is built once at startup and treated as read-only afterward,
// so extractors sharing one can run in parallel without locking.
type Lexicon struct {
	Abbreviations   []string      `yaml:"abbreviations"`    // tokens whose trailing period never ends a sentence
	NameExtenders   []string      `yaml:"name_extenders"`   // leading tokens that keep a comma segment inside a party name
	CertaintyWords  []string      `yaml:"certainty_words"`  // leading qualifiers that mark a whole record uncertain
	Acquisitions    []Acquisition `yaml:"acquisitions"`     // acquisition methods with their surface forms
	FootnoteDivider string        `yaml:"footnote_divider"` // literal marker separating narrative from footnotes
}

// Acquisition is one canonical acquisition method and the textual forms
// cataloguers use for it. Forms are matched and stripped longest-first.
type Acquisition struct {
	Name  string   `yaml:"name"`
	Forms []string `yaml:"forms"`
}

// Default returns the built-in lexicon tuned to museum catalog prose.
func Default() *Lexicon {
	return &Lexicon{
		Abbreviations: []string{
			"Mr.", "Mrs.", "Ms.", "Dr.", "Prof.", "Rev.", "Hon.", "Fr.",
			"Col.", "Gen.", "Capt.", "Maj.", "Lt.", "Sgt.", "Adm.",
			"Mme.", "Mlle.", "Msgr.", "St.", "Ste.", "Mt.",
			"Jr.", "Sr.", "Esq.",
			"Co.", "Inc.", "Ltd.", "Assoc.", "Bros.", "Dept.",
			"no.", "No.", "nos.", "Nos.", "inv.", "acc.",
			"ca.", "c.", "b.", "d.", "fl.", "attrib.", "approx.",
			"Jan.", "Feb.", "Mar.", "Apr.", "Jun.", "Jul.", "Aug.",
			"Sept.", "Sep.", "Oct.", "Nov.", "Dec.",
			"vol.", "pp.", "p.", "cat.", "pl.", "fig.",
		},
		NameExtenders: []string{
			"Jr", "Jr.", "Sr", "Sr.", "II", "III", "IV",
			"the Elder", "the Younger",
			"Count", "Countess", "Duke", "Duchess", "Baron", "Baroness",
			"Earl", "Marquis", "Marquess", "Viscount", "Viscountess",
			"Lord", "Lady", "Sir", "Dame", "Prince", "Princess",
			"King", "Queen", "Emperor", "Empress",
			"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th",
			"son of", "daughter of", "his son", "her son", "his daughter",
			"her daughter", "his wife", "her husband", "his brother",
			"his sister", "his nephew", "his niece", "her nephew",
			"her niece", "widow of", "wife of", "husband of",
			"brother of", "sister of", "nephew of", "niece of",
			"cousin of", "heirs of", "estate of", "family of",
			"née",
		},
		CertaintyWords: []string{
			"possibly", "probably", "likely", "perhaps", "presumably",
			"supposedly", "reportedly", "apparently", "reputedly",
			"allegedly", "evidently",
		},
		Acquisitions: []Acquisition{
			{
				Name: "purchase",
				Forms: []string{
					"purchased from", "purchased by", "purchased at",
					"purchased through", "purchase from", "purchase by",
					"bought from", "bought by", "bought at",
					"by purchase", "purchased", "purchase",
				},
			},
			{
				Name: "sale",
				Forms: []string{
					"sold through", "sold at", "sold to", "sold by",
					"sale to", "by sale", "sold", "sale",
				},
			},
			{
				Name: "gift",
				Forms: []string{
					"presented to", "presented by", "donated to",
					"donated by", "given to", "given by", "gift of",
					"gift to", "gift from", "by gift", "gift",
				},
			},
			{
				Name: "bequest",
				Forms: []string{
					"bequeathed to", "bequeathed by", "bequest of",
					"bequest to", "by bequest", "bequest",
				},
			},
			{
				Name: "by descent",
				Forms: []string{
					"by descent through", "by descent to", "by descent from",
					"passed by descent", "by inheritance", "inherited from",
					"inherited by", "by descent",
				},
			},
			{
				Name: "by exchange",
				Forms: []string{
					"acquired by exchange", "by exchange with",
					"exchanged with", "by exchange",
				},
			},
			{
				Name: "transfer",
				Forms: []string{
					"transferred from", "transferred to", "transferred by",
					"by transfer", "transfer",
				},
			},
			{
				Name: "commission",
				Forms: []string{
					"commissioned from", "commissioned by", "commissioned through",
					"by commission", "commissioned", "commission",
				},
			},
			{
				Name: "auction",
				Forms: []string{
					"sold at auction", "at auction", "auctioned at",
					"auctioned by", "by auction", "auction",
				},
			},
			{
				Name: "loan",
				Forms: []string{
					"on extended loan to", "on long-term loan to",
					"on loan to", "on loan from", "lent to", "lent by",
					"on deposit at", "loan",
				},
			},
			{
				Name: "restitution",
				Forms: []string{
					"restituted to", "restituted by", "returned to",
					"by restitution", "restitution",
				},
			},
			{
				Name: "seizure",
				Forms: []string{
					"confiscated from", "confiscated by", "seized from",
					"seized by", "looted from", "looted by",
					"appropriated from", "appropriated by", "seizure",
				},
			},
			{
				Name: "by descent within the family",
				Forms: []string{
					"by descent within the family", "remained in the family",
					"thence by descent",
				},
			},
		},
		FootnoteDivider: "NOTES:",
	}
}

// Load returns the default lexicon with the overlay file at path merged
// in. List entries are appended (duplicates dropped); an acquisition with
// a name already present replaces the built-in one; a non-empty
// footnote_divider replaces the default.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}

	var overlay Lexicon
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}

	lex.merge(&overlay)
	return lex, nil
}

// merge folds an overlay into the receiver.
func (l *Lexicon) merge(o *Lexicon) {
	l.Abbreviations = appendUnique(l.Abbreviations, o.Abbreviations)
	l.NameExtenders = appendUnique(l.NameExtenders, o.NameExtenders)
	l.CertaintyWords = appendUnique(l.CertaintyWords, o.CertaintyWords)

	for _, a := range o.Acquisitions {
		replaced := false
		for i, existing := range l.Acquisitions {
			if existing.Name == a.Name {
				l.Acquisitions[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			l.Acquisitions = append(l.Acquisitions, a)
		}
	}

	if o.FootnoteDivider != "" {
		l.FootnoteDivider = o.FootnoteDivider
	}
}

func appendUnique(base []string, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if s != "" && !seen[s] {
			seen[s] = true
			base = append(base, s)
		}
	}
	return base
}
