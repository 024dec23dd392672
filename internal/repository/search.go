package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-assistant/internal/command"
)

// searchSource declares which columns of a table take part in free-text
// search. Column names are trusted identifiers, never user input.
type searchSource struct {
	kind     string
	singular string
	plural   string
	table    string
	columns  []string
}

var searchSources = []searchSource{
	{kind: "bills", singular: "bill", plural: "bills", table: "bills", columns: []string{"name", "provider", "category"}},
	{kind: "documents", singular: "document", plural: "documents", table: "documents", columns: []string{"title", "category", "notes"}},
	{kind: "vehicles", singular: "vehicle", plural: "vehicles", table: "vehicles", columns: []string{"make", "model", "nickname", "license_plate"}},
	{kind: "pets", singular: "pet", plural: "pets", table: "pets", columns: []string{"name", "species", "breed", "vet_name"}},
	{kind: "insurance", singular: "insurance policy", plural: "insurance policies", table: "insurance_policies", columns: []string{"policy_type", "provider", "policy_number"}},
	{kind: "medical", singular: "medical record", plural: "medical records", table: "medical_records", columns: []string{"person_name", "record_type", "title", "provider"}},
	{kind: "contacts", singular: "contact", plural: "contacts", table: "service_contacts", columns: []string{"name", "service_type", "phone", "email"}},
	{kind: "appointments", singular: "appointment", plural: "appointments", table: "appointments", columns: []string{"title", "location", "notes"}},
}

type SearchRepository struct {
	db *pgxpool.Pool
}

// NewSearchRepository создает репозиторий поиска по записям домохозяйства.
func NewSearchRepository(db *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search считает записи каждого источника, в которых встречается хотя бы
// одно слово запроса. Порядок результата совпадает с порядком источников.
func (r *SearchRepository) Search(ctx context.Context, userID uuid.UUID, query string) ([]command.SearchCount, error) {
	counts := make([]command.SearchCount, 0, len(searchSources))
	patterns := likePatterns(command.SearchTerms(query))

	for _, source := range searchSources {
		count := command.SearchCount{Kind: source.kind, Singular: source.singular, Plural: source.plural}
		if len(patterns) > 0 {
			if err := r.db.QueryRow(ctx, source.countQuery(), userID, patterns).Scan(&count.Count); err != nil {
				return nil, fmt.Errorf("search %s: %w", source.kind, err)
			}
		}
		counts = append(counts, count)
	}

	return counts, nil
}

func (s searchSource) countQuery() string {
	conditions := make([]string, 0, len(s.columns))
	for _, column := range s.columns {
		conditions = append(conditions, fmt.Sprintf("COALESCE(%s, '') ILIKE ANY($2)", column))
	}

	return fmt.Sprintf("SELECT count(*) FROM %s WHERE user_id = $1 AND (%s)", s.table, strings.Join(conditions, " OR "))
}

func likePatterns(terms []string) []string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	patterns := make([]string, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, "%"+escaper.Replace(term)+"%")
	}
	return patterns
}
