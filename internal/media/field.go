package media

// FieldKind is the JSON kind an extended field must decode as.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
)

// Field is an optional, type-specific metadata attribute.
type Field struct {
	Name string
	Kind FieldKind
	// Hints for the prompt, keyed by base language.
	HintES string
	HintEN string
}

var (
	Platform    = Field{"platform", KindString, "plataforma principal", "main platform"}
	Developer   = Field{"developer", KindString, "estudio desarrollador", "developer studio"}
	Publisher   = Field{"publisher", KindString, "editorial o distribuidora", "publisher"}
	DurationMin = Field{"duration_min", KindInteger, "duración en minutos", "runtime in minutes"}
	Pages       = Field{"pages", KindInteger, "número de páginas", "page count"}
	Episodes    = Field{"episodes", KindInteger, "número de episodios", "episode count"}
	Seasons     = Field{"seasons", KindInteger, "número de temporadas", "season count"}
	ISBN        = Field{"isbn", KindString, "ISBN", "ISBN"}
)

// ExtendedFields lists every extended field in column order.
var ExtendedFields = []Field{Platform, Developer, Publisher, DurationMin, Pages, Episodes, Seasons, ISBN}
