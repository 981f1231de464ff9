package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005

	// Syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2002
	SynUnclosedBrace      Code = 2003
	SynUnclosedBracket    Code = 2004
	SynExpectSemicolon    Code = 2005
	SynExpectIdentifier   Code = 2006
	SynExpectType         Code = 2007
	SynExpectExpression   Code = 2008
	SynBadLiteral         Code = 2009
	SynBadLiteralSuffix   Code = 2010
	SynUnterminatedDecl   Code = 2011
	SynDanglingElse       Code = 2012
	SynDanglingEndif      Code = 2013
	SynUnterminatedCond   Code = 2014
	SynBadDirective       Code = 2015
	SynVariadicMustBeLast Code = 2016

	// Model
	ModInfo           Code = 3000
	ModUnresolvedType Code = 3001
	ModUnresolvedName Code = 3002
	ModDuplicateGroup Code = 3003
	ModDuplicateValue Code = 3004
	ModDuplicateDecl  Code = 3005
	ModMacroRecursion Code = 3006
	ModBadProperty    Code = 3007
	ModMacroArity     Code = 3008
	ModBadConstant    Code = 3009
	ModLayout         Code = 3010

	// Emitter invariants
	EmtInfo            Code = 4000
	EmtNameCollision   Code = 4001
	EmtIncompleteValue Code = 4002
	EmtFormat          Code = 4003
	EmtUnsupportedType Code = 4004

	// IO
	IOLoadFileError  Code = 5001
	IOWriteError     Code = 5002
	IOEncodeMetadata Code = 5003

	// Project
	ProjInfo            Code = 6000
	ProjDuplicateModule Code = 6001
	ProjNoHeaders       Code = 6002
	ProjBadManifest     Code = 6003
	ProjIncludeCycle    Code = 6004

	// Observability
	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexUnterminatedChar:         "Unterminated character literal",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBrace:            "Unclosed brace",
	SynUnclosedBracket:          "Unclosed bracket",
	SynExpectSemicolon:          "Expected semicolon",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectType:               "Expected type",
	SynExpectExpression:         "Expected expression",
	SynBadLiteral:               "Malformed literal",
	SynBadLiteralSuffix:         "Invalid literal suffix",
	SynUnterminatedDecl:         "Unterminated declaration",
	SynDanglingElse:             "#else or #elif without #if",
	SynDanglingEndif:            "#endif without #if",
	SynUnterminatedCond:         "Unterminated conditional block",
	SynBadDirective:             "Malformed preprocessor directive",
	SynVariadicMustBeLast:       "Variadic parameter must be last",
	ModInfo:                     "Model information",
	ModUnresolvedType:           "Unresolved type reference",
	ModUnresolvedName:           "Unresolved name reference",
	ModDuplicateGroup:           "Duplicate group in module",
	ModDuplicateValue:           "Duplicate value in group",
	ModDuplicateDecl:            "Duplicate declaration",
	ModMacroRecursion:           "Recursive macro expansion",
	ModBadProperty:              "Malformed property definition",
	ModMacroArity:               "Macro called with wrong number of arguments",
	ModBadConstant:              "Constant expression cannot be evaluated",
	ModLayout:                   "Type layout cannot be computed",
	EmtInfo:                     "Emitter information",
	EmtNameCollision:            "Generated name collision",
	EmtIncompleteValue:          "Incomplete group value",
	EmtFormat:                   "Generated code does not format",
	EmtUnsupportedType:          "Type cannot be expressed in Go",
	IOLoadFileError:             "I/O load file error",
	IOWriteError:                "I/O write error",
	IOEncodeMetadata:            "Metadata encoding error",
	ProjInfo:                    "Project information",
	ProjDuplicateModule:         "Duplicate module name",
	ProjNoHeaders:               "No headers found",
	ProjBadManifest:             "Invalid project manifest",
	ProjIncludeCycle:            "Headers include each other",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("MOD%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
