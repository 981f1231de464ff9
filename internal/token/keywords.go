package token

var keywords = map[string]Kind{
	"typedef":    KwTypedef,
	"struct":     KwStruct,
	"union":      KwUnion,
	"enum":       KwEnum,
	"const":      KwConst,
	"volatile":   KwVolatile,
	"restrict":   KwRestrict,
	"__restrict": KwRestrict,
	"extern":     KwExtern,
	"static":     KwStatic,
	"inline":     KwInline,
	"__inline":   KwInline,
	"__inline__": KwInline,
	"signed":     KwSigned,
	"unsigned":   KwUnsigned,
	"sizeof":     KwSizeof,
}

// LookupKeyword maps an identifier lexeme to its keyword kind.
// The lookup is case sensitive.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}
