package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0
	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	LexUnterminatedChar         Code = 1006
	LexBadEscape                Code = 1007
	LexIdentNotNormalized       Code = 1008
	LexBadRawString             Code = 1009
	LexEmptyChar                Code = 1010

	// Синтаксические
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedDelimiter    Code = 2002
	SynExpectSemicolon      Code = 2003
	SynExpectIdentifier     Code = 2004
	SynExpectItem           Code = 2005
	SynExpectExpression     Code = 2006
	SynExpectType           Code = 2007
	SynExpectPattern        Code = 2008
	SynExpectBlock          Code = 2009
	SynChainedComparison    Code = 2010
	SynTurbofishRequired    Code = 2011
	SynUnbalancedMacroRule  Code = 2012
	SynExpectFatArrow       Code = 2013
	SynInnerAttrNotAllowed  Code = 2014
	SynAttrWithoutItem      Code = 2015
	SynModifierNotAllowed   Code = 2016
	SynChainedRange         Code = 2017
	SynExpectMacroArgs      Code = 2018
	SynExpectGenericClose   Code = 2019
	SynUnexpectedCloseDelim Code = 2020

	// Дерево модулей крейта
	ProjInfo              Code = 3000
	ProjMissingModuleFile Code = 3001
	ProjDuplicateModule   Code = 3002
	ProjModuleCycle       Code = 3003
	ProjModuleHasErrors   Code = 3004
	ProjUnreadableFile    Code = 3005
	ProjAmbiguousModule   Code = 3006

	// Ресурсы
	ResInfo             Code = 9000
	SynResourceExceeded Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed numeric literal",
		LexTokenTooLong:             "Token exceeds maximum length",
		LexUnterminatedChar:         "Unterminated character literal",
		LexBadEscape:                "Invalid escape sequence",
		LexIdentNotNormalized:       "Identifier is not in NFC form",
		LexBadRawString:             "Malformed raw string literal",
		LexEmptyChar:                "Empty character literal",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedDelimiter:        "Unclosed delimiter",
		SynExpectSemicolon:          "Expected semicolon",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectItem:               "Expected item",
		SynExpectExpression:         "Expected expression",
		SynExpectType:               "Expected type",
		SynExpectPattern:            "Expected pattern",
		SynExpectBlock:              "Expected block",
		SynChainedComparison:        "Comparison operators cannot be chained",
		SynTurbofishRequired:        "Generic arguments in expressions require '::'",
		SynUnbalancedMacroRule:      "Unbalanced delimiters in macro rule",
		SynExpectFatArrow:           "Expected '=>'",
		SynInnerAttrNotAllowed:      "Inner attribute is not permitted here",
		SynAttrWithoutItem:          "Attributes are not followed by an item",
		SynModifierNotAllowed:       "Modifier is not allowed here",
		SynChainedRange:             "Range operators cannot be chained",
		SynExpectMacroArgs:          "Expected macro arguments",
		SynExpectGenericClose:       "Expected '>'",
		SynUnexpectedCloseDelim:     "Unexpected closing delimiter",
		ProjInfo:                    "Project information",
		ProjMissingModuleFile:       "Module file not found",
		ProjDuplicateModule:         "File is loaded as more than one module",
		ProjModuleCycle:             "Module declarations form a cycle",
		ProjModuleHasErrors:         "Module file has errors",
		ProjUnreadableFile:          "Source file cannot be read",
		ProjAmbiguousModule:         "Module file found at both candidate paths",
		ResInfo:                     "Resource information",
		SynResourceExceeded:         "Parse resource budget exceeded",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("RES%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return c.ID()
}

// IsFatal reports whether the code aborts the parse.
func (c Code) IsFatal() bool {
	return c == SynResourceExceeded
}
