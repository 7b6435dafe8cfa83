package core

import "sort"

// Category is a closed set of transaction categories stored by key.
type Category string

const (
	CategorySalary     Category = "salary"
	CategoryFreelance  Category = "freelance"
	CategoryInvestment Category = "investment"
	CategoryFood       Category = "food"
	CategoryTransport  Category = "transport"
	CategoryHousing    Category = "housing"
	CategoryHealth     Category = "health"
	CategoryEducation  Category = "education"
	CategoryLeisure    Category = "leisure"
	CategoryShopping   Category = "shopping"
	CategoryBills      Category = "bills"
	CategoryOther      Category = "other"
)

// UncategorizedLabel is shown for records with an empty category key.
const UncategorizedLabel = "Sem categoria"

// CategoryLabels maps category keys to pt-BR display names.
var CategoryLabels = map[Category]string{
	CategorySalary:     "Salário",
	CategoryFreelance:  "Freelance",
	CategoryInvestment: "Investimentos",
	CategoryFood:       "Alimentação",
	CategoryTransport:  "Transporte",
	CategoryHousing:    "Moradia",
	CategoryHealth:     "Saúde",
	CategoryEducation:  "Educação",
	CategoryLeisure:    "Lazer",
	CategoryShopping:   "Compras",
	CategoryBills:      "Contas",
	CategoryOther:      "Outros",
}

var incomeCategories = []Category{CategorySalary, CategoryFreelance, CategoryInvestment, CategoryOther}

var expenseCategories = []Category{
	CategoryFood, CategoryTransport, CategoryHousing, CategoryHealth, CategoryEducation,
	CategoryLeisure, CategoryShopping, CategoryBills, CategoryOther,
}

func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// AllowedFor reports whether the category is offered for the transaction
// type.
func (c Category) AllowedFor(t TransactionType) bool {
	var list []Category
	switch t {
	case Income:
		list = incomeCategories
	case Expense:
		list = expenseCategories
	}
	for _, candidate := range list {
		if candidate == c {
			return true
		}
	}
	return false
}

// CategoryLabel never fails: unknown keys are returned as-is and empty keys
// get a placeholder.
func CategoryLabel(c Category) string {
	if label, ok := CategoryLabels[c]; ok {
		return label
	}
	if c == "" {
		return UncategorizedLabel
	}
	return string(c)
}

// CategoriesFor lists the categories offered in forms for a transaction type.
// An unknown type yields every category sorted by label.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case Income:
		return append([]Category(nil), incomeCategories...)
	case Expense:
		return append([]Category(nil), expenseCategories...)
	}
	all := make([]Category, 0, len(CategoryLabels))
	for c := range CategoryLabels {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return CategoryLabels[all[i]] < CategoryLabels[all[j]] })
	return all
}
