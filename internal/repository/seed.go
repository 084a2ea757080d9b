package repository

import (
	"github.com/google/uuid"

	"github.com/Dan9191/finance-service/internal/models"
)

// These rows mirror migrations/000002_seed_defaults.up.sql.

type seedCategory struct {
	id, name, icon, color string
	typ                   models.TransactionType
}

var defaultCategories = []seedCategory{
	{"c0000000-0000-4000-8000-000000000001", "Alimentação", "utensils", "#EF4444", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000002", "Transporte", "car", "#F59E0B", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000003", "Moradia", "home", "#8B5CF6", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000004", "Saúde", "heart", "#EC4899", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000005", "Educação", "book", "#3B82F6", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000006", "Lazer", "gamepad", "#10B981", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000007", "Compras", "shopping-bag", "#F97316", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000008", "Serviços", "wrench", "#6366F1", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000009", "Outros", "more-horizontal", "#6B7280", models.TypeExpense},
	{"c0000000-0000-4000-8000-000000000010", "Salário", "briefcase", "#22C55E", models.TypeIncome},
	{"c0000000-0000-4000-8000-000000000011", "Freelance", "laptop", "#14B8A6", models.TypeIncome},
	{"c0000000-0000-4000-8000-000000000012", "Investimentos", "trending-up", "#0EA5E9", models.TypeIncome},
	{"c0000000-0000-4000-8000-000000000013", "Vendas", "tag", "#A855F7", models.TypeIncome},
	{"c0000000-0000-4000-8000-000000000014", "Outros", "plus-circle", "#6B7280", models.TypeIncome},
}

var defaultIndicators = []models.Indicator{
	{
		ID:          uuid.MustParse("1d000000-0000-4000-8000-000000000001"),
		Name:        "% Renda Comprometida",
		Code:        models.IndicatorIncomeCommitted,
		Description: strPtr("Percentual da renda comprometida com despesas"),
		Type:        models.IndicatorPercentage,
		IsActive:    true,
	},
	{
		ID:          uuid.MustParse("1d000000-0000-4000-8000-000000000002"),
		Name:        "% Renda Disponível",
		Code:        models.IndicatorIncomeAvailable,
		Description: strPtr("Percentual da renda que sobra após as despesas"),
		Type:        models.IndicatorPercentage,
		IsActive:    true,
	},
	{
		ID:          uuid.MustParse("1d000000-0000-4000-8000-000000000003"),
		Name:        "Saldo do Período",
		Code:        models.IndicatorMonthlySavings,
		Description: strPtr("Receitas menos despesas no período"),
		Type:        models.IndicatorCurrency,
		IsActive:    true,
	},
	{
		ID:          uuid.MustParse("1d000000-0000-4000-8000-000000000004"),
		Name:        "Qtd. Despesas",
		Code:        models.IndicatorExpenseCount,
		Description: strPtr("Quantidade de despesas no período"),
		Type:        models.IndicatorNumber,
		IsActive:    true,
	},
}

// DefaultCategories returns the global categories every installation starts with.
func DefaultCategories() []models.Category {
	out := make([]models.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		out = append(out, models.Category{
			ID:       uuid.MustParse(c.id),
			Name:     c.name,
			Type:     c.typ,
			Icon:     strPtr(c.icon),
			Color:    strPtr(c.color),
			IsActive: true,
		})
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
