package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSearchTerms проверяет выделение значимых слов запроса.
func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"warranty"}, SearchTerms("Where did I put the warranty?"))
	assert.Equal(t, []string{"car", "title"}, SearchTerms("where is the car title"))
	assert.Equal(t, []string{"vet"}, SearchTerms("vet, VET and vet"))
	assert.Empty(t, SearchTerms("where is it?"))
	assert.Empty(t, SearchTerms(""))
}
