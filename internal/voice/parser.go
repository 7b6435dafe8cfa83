// Package voice turns a spoken pt-BR sentence into a transaction draft.
//
// The parser is rule based: keywords decide the type and category, the first
// number is the amount and "hoje", "ontem", "anteontem" or a dd/mm[/yyyy]
// token sets the date. Whatever is left becomes the description.
package voice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"financas/internal/core"
)

var (
	ErrEmptyUtterance = errors.New("empty utterance")
	ErrNoAmount       = errors.New("no amount found in utterance")
)

var (
	amountRe = regexp.MustCompile(`(?i)(?:r\$\s*)?(\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	dateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
)

// Keywords are matched against accent-folded lowercase words.
var (
	expenseWords = wordSet("gastei", "paguei", "comprei", "gasto", "despesa", "saiu")
	incomeWords  = wordSet("recebi", "ganhei", "receita", "entrou", "caiu")

	relativeDays = map[string]int{"hoje": 0, "ontem": -1, "anteontem": -2}

	stopWords = wordSet(
		"no", "na", "nos", "nas", "em", "de", "do", "da", "dos", "das", "com", "para", "pra",
		"pro", "o", "a", "os", "as", "um", "uma", "e", "reais", "real", "r$", "conto", "contos",
	)
)

type categoryRule struct {
	category core.Category
	words    map[string]struct{}
}

// First match wins.
var categoryRules = []categoryRule{
	{core.CategorySalary, wordSet("salario", "holerite")},
	{core.CategoryFreelance, wordSet("freela", "freelance", "projeto", "cliente", "bico")},
	{core.CategoryInvestment, wordSet("dividendo", "dividendos", "rendimento", "rendimentos", "juros", "investimento")},
	{core.CategoryFood, wordSet("mercado", "supermercado", "restaurante", "almoco", "jantar", "lanche", "comida", "padaria", "ifood", "cafe", "pizza", "feira")},
	{core.CategoryTransport, wordSet("uber", "taxi", "onibus", "gasolina", "combustivel", "metro", "estacionamento", "pedagio", "passagem")},
	{core.CategoryHousing, wordSet("aluguel", "condominio", "iptu", "reforma")},
	{core.CategoryHealth, wordSet("farmacia", "remedio", "medico", "consulta", "dentista", "exame", "academia", "plano")},
	{core.CategoryEducation, wordSet("curso", "escola", "faculdade", "livro", "livros", "mensalidade", "apostila")},
	{core.CategoryLeisure, wordSet("cinema", "show", "viagem", "bar", "netflix", "spotify", "jogo", "ingresso", "festa")},
	{core.CategoryShopping, wordSet("roupa", "roupas", "shopping", "loja", "presente", "tenis", "sapato")},
	{core.CategoryBills, wordSet("luz", "agua", "internet", "telefone", "celular", "energia", "gas", "boleto", "fatura")},
}

// Parser reads utterances relative to the clock it is given.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// WithClock returns a copy of the parser reading dates relative to now.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse builds a transaction draft from text. The draft is validated before
// it is returned.
func (p *Parser) Parse(text string) (core.NewTransaction, error) {
	text = normalize(text)
	if text == "" {
		return core.NewTransaction{}, ErrEmptyUtterance
	}
	now := p.now()

	date, rest, err := guessDate(text, now)
	if err != nil {
		return core.NewTransaction{}, err
	}
	amount, rest, err := guessAmount(rest)
	if err != nil {
		return core.NewTransaction{}, err
	}

	words := strings.Fields(rest)
	txType, explicit := guessType(words)
	category := guessCategory(words)
	switch {
	case category == "":
		category = core.CategoryOther
	case !explicit:
		txType = typeOf(category)
	case !category.AllowedFor(txType):
		category = core.CategoryOther
	}

	draft := core.NewTransaction{
		Type:        txType,
		Category:    category,
		Amount:      amount,
		Description: guessDescription(words),
		Date:        date,
	}
	if err := draft.Validate(); err != nil {
		return core.NewTransaction{}, fmt.Errorf("parse utterance: %w", err)
	}
	return draft, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// guessDate returns the date and text with the date token removed.
func guessDate(text string, now time.Time) (string, string, error) {
	if loc := dateRe.FindStringSubmatchIndex(text); loc != nil {
		m := submatches(text, loc)
		year := now.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				y += 2000
			}
			year = y
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if _, _, _, err := core.ParseDate(date); err != nil {
			return "", "", err
		}
		return date, text[:loc[0]] + text[loc[1]:], nil
	}

	words := strings.Fields(text)
	for i, w := range words {
		if offset, ok := relativeDays[fold(w)]; ok {
			rest := append(append([]string{}, words[:i]...), words[i+1:]...)
			return core.Today(now.AddDate(0, 0, offset)), strings.Join(rest, " "), nil
		}
	}
	return core.Today(now), text, nil
}

func guessAmount(text string) (float64, string, error) {
	loc := amountRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, text, ErrNoAmount
	}
	amount, err := core.ParseAmount(text[loc[2]:loc[3]])
	if err != nil {
		return 0, text, fmt.Errorf("%w: %v", ErrNoAmount, err)
	}
	return amount, text[:loc[0]] + text[loc[1]:], nil
}

func guessType(words []string) (core.TransactionType, bool) {
	for _, w := range words {
		f := fold(w)
		if _, ok := incomeWords[f]; ok {
			return core.Income, true
		}
		if _, ok := expenseWords[f]; ok {
			return core.Expense, true
		}
	}
	return core.Expense, false
}

func guessCategory(words []string) core.Category {
	for _, rule := range categoryRules {
		for _, w := range words {
			if _, ok := rule.words[fold(w)]; ok {
				return rule.category
			}
		}
	}
	return ""
}

// guessDescription keeps the words that are not keywords, in order.
func guessDescription(words []string) string {
	var kept []string
	for _, w := range words {
		f := fold(w)
		if _, ok := stopWords[f]; ok {
			continue
		}
		if _, ok := expenseWords[f]; ok {
			continue
		}
		if _, ok := incomeWords[f]; ok {
			continue
		}
		if w = trimPunct(w); w != "" {
			kept = append(kept, w)
		}
	}
	desc := capitalize(strings.Join(kept, " "))
	if utf8.RuneCountInString(desc) > core.MaxDescriptionLength {
		desc = string([]rune(desc)[:core.MaxDescriptionLength])
	}
	return desc
}

func typeOf(c core.Category) core.TransactionType {
	if c.AllowedFor(core.Income) && c != core.CategoryOther {
		return core.Income
	}
	return core.Expense
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// fold lowercases w, drops punctuation at the edges and strips accents.
func fold(w string) string {
	w = strings.ToLower(trimPunct(w))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, w)
	if err != nil {
		return w
	}
	return out
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, unicode.IsPunct)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
