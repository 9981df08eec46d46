package dto

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindQuery(t *testing.T, rawQuery string, out any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	require.NoError(t, c.ShouldBindQuery(out))
}

func TestSaleFilter_BindsQueryParams(t *testing.T) {
	var f SaleFilter
	bindQuery(t, "date=2026-01-01&page=2&limit=5", &f)
	assert.Equal(t, "2026-01-01", f.Date)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
}

func TestSaleFilter_Defaults(t *testing.T) {
	var f SaleFilter
	bindQuery(t, "", &f)
	assert.Empty(t, f.Date)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)
}

func TestProductFilter_BindsQueryParams(t *testing.T) {
	var f ProductFilter
	bindQuery(t, "name=bread&active=all", &f)
	assert.Equal(t, "bread", f.Name)
	assert.Equal(t, "all", f.Active)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)
}
