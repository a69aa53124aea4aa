// Package asmlex is the tokenizer stub for the x86 assembler front-end
// mentioned in SPEC_FULL.md's scope but not implemented beyond this
// stage: there is no assembler parser or backend here, only the token
// vocabulary the compiler's own generator emits (instruction mnemonics,
// AT&T register names, the `u8/u16/u32/u64` size keywords, identifiers,
// integer literals, and the small punctuation set `: , [ ] + * ( )`).
//
// Unlike internal/lexer this tokenizer is built on goparsec's parser
// combinators rather than a hand-rolled scanner, matching how the
// assembler-adjacent tooling elsewhere in this codebase's lineage is
// built.
package asmlex

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"
)

type Kind int

const (
	EOF Kind = iota
	Mnemonic
	Register
	Keyword
	Ident
	IntLit
	Punct
)

func (k Kind) String() string {
	switch k {
	case Mnemonic:
		return "MNEMONIC"
	case Register:
		return "REGISTER"
	case Keyword:
		return "KEYWORD"
	case Ident:
		return "IDENT"
	case IntLit:
		return "INTLIT"
	case Punct:
		return "PUNCT"
	default:
		return "EOF"
	}
}

// Token is the stub tokenizer's output unit: a kind, the matched text,
// and (for IntLit) its parsed unsigned value.
type Token struct {
	Kind  Kind
	Text  string
	Value uint64
}

// mnemonics mirrors the instruction subset the generator actually
// emits plus the handful the modeled assembler's own lexer recognized.
var mnemonics = []string{
	"movzx", "mov", "lea", "leaq", "add", "adc", "sub", "sbb", "or", "and",
	"xor", "cmp", "imul", "push", "pop", "call", "ret", "jmp", "jne",
	"sete", "setne", "setg", "setl", "setge", "setle",
}

var keywords = []string{"u8", "u16", "u32", "u64"}

var ast = pc.NewAST("asm_tokens", 0)

func mnemonicChoices() []pc.Parser {
	choices := make([]pc.Parser, len(mnemonics))
	for i, m := range mnemonics {
		choices[i] = pc.Atom(m, "MNEMONIC")
	}
	return choices
}

func keywordChoices() []pc.Parser {
	choices := make([]pc.Parser, len(keywords))
	for i, k := range keywords {
		choices[i] = pc.Atom(k, "KEYWORD")
	}
	return choices
}

func punctChoices() []pc.Parser {
	puncts := []string{":", ",", "[", "]", "+", "*", "(", ")"}
	choices := make([]pc.Parser, len(puncts))
	for i, p := range puncts {
		choices[i] = pc.Atom(p, p)
	}
	return choices
}

var (
	pMnemonic = ast.OrdChoice("mnemonic", nil, mnemonicChoices()...)
	pRegister = pc.Token(`%[A-Za-z0-9]+`, "REGISTER")
	pKeyword  = ast.OrdChoice("keyword", nil, keywordChoices()...)
	pIntLit   = pc.Token(`0[xX][0-9a-fA-F]+|0[bB][01]+|0[0-7]+|[0-9]+`, "INTLIT")
	pIdent    = pc.Token(`[A-Za-z_][A-Za-z0-9_]*`, "IDENT")
	pPunct    = ast.OrdChoice("punct", nil, punctChoices()...)

	pAnyToken = ast.OrdChoice("token", nil, pMnemonic, pRegister, pKeyword, pIntLit, pIdent, pPunct)
	pTokens   = ast.Kleene("tokens", nil, pAnyToken)
)

// Tokenizer wraps an io.Reader, the same input type compiler.Compile
// takes.
type Tokenizer struct{ reader io.Reader }

func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{reader: r}
}

// Tokenize reads the whole input and returns its token vector. It is the
// only entry point this package exposes; there is deliberately no
// Parse() on top of it.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	content, err := io.ReadAll(t.reader)
	if err != nil {
		return nil, fmt.Errorf("asmlex: cannot read input: %w", err)
	}

	root, ok := ast.Parsewith(pTokens, pc.NewScanner(content))
	if !ok || root == nil {
		return nil, fmt.Errorf("asmlex: failed to tokenize input")
	}

	var out []Token
	for _, child := range root.GetChildren() {
		tok, err := leafToken(child)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// leafToken descends through the OrdChoice wrapper nodes (mnemonic,
// keyword, punct, and the outer token alternative all add one level of
// indirection) until it reaches the actual matched leaf, then classifies
// it by name.
func leafToken(n pc.Queryable) (Token, error) {
	for len(n.GetChildren()) == 1 {
		n = n.GetChildren()[0]
	}
	name := n.GetName()
	text := fmt.Sprintf("%v", n.GetValue())

	switch name {
	case "MNEMONIC":
		return Token{Kind: Mnemonic, Text: text}, nil
	case "REGISTER":
		return Token{Kind: Register, Text: text}, nil
	case "KEYWORD":
		return Token{Kind: Keyword, Text: text}, nil
	case "IDENT":
		return Token{Kind: Ident, Text: text}, nil
	case "INTLIT":
		val, err := parseIntLiteral(text)
		if err != nil {
			return Token{}, fmt.Errorf("asmlex: %w", err)
		}
		return Token{Kind: IntLit, Text: text, Value: val}, nil
	default:
		return Token{Kind: Punct, Text: name}, nil
	}
}

// parseIntLiteral implements the same base-detection rule as the
// modeled assembler's xstrtonum: 0x/0X -> hex, 0b/0B -> binary, a
// leading 0 followed by further digits -> octal, otherwise decimal.
// Unlike internal/lexer, binary literals are supported here (see
// DESIGN.md and SPEC_FULL.md's "Lexer base parsing" property).
func parseIntLiteral(s string) (uint64, error) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		return strconv.ParseUint(s[2:], 2, 64)
	case len(s) > 1 && s[0] == '0':
		return strconv.ParseUint(s[1:], 8, 64)
	default:
		return strconv.ParseUint(s, 10, 64)
	}
}
