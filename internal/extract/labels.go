package extract

// LabelSet holds one language's anchor patterns. Entries are regular
// expression fragments matched case-insensitively. The extractor compiles
// all languages together, so covering a new language means adding an entry
// to the map, not touching the rules.
type LabelSet struct {
	Name      []string
	Phone     []string
	BirthDate []string

	// HeaderIgnore marks document-header lines that must never be taken
	// as a personal name by the fallback heuristic.
	HeaderIgnore []string

	// Single-label line-tail fields.
	Address         []string
	Profession      []string
	Major           []string
	CulturalLevel   []string
	ForeignLanguage []string
}

// DefaultLabels covers Vietnamese and English résumés. Longer anchors come
// first so they win over their substrings at the same match position.
var DefaultLabels = map[string]LabelSet{
	"vi": {
		Name:         []string{`họ\s*và\s*tên`, `tên\s*tôi\s*là`, `họ\s*tên`, `tên`},
		Phone:        []string{`số\s*điện\s*thoại`},
		BirthDate:    []string{`ngày\s*sinh`, `sinh\s*năm`},
		HeaderIgnore: []string{`cộng hòa`, `độc lập`},

		Address:         []string{`địa\s*chỉ`},
		Profession:      []string{`nghề\s*nghiệp\s*chuyên\s*môn`},
		Major:           []string{`ngành`},
		CulturalLevel:   []string{`trình\s*độ\s*văn\s*hóa`},
		ForeignLanguage: []string{`ngoại\s*ngữ`},
	},
	"en": {
		Name:         []string{`my\s*name\s*is`, `full\s*name`, `name`},
		Phone:        []string{`phone`},
		BirthDate:    []string{`date\s*of\s*birth`, `birth\s*date`},
		HeaderIgnore: []string{`united states`},
	},
}
