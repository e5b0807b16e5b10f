package productControllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/manch118/fasteStore/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:product_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func testRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/products", GetProducts(db))
	return r
}

type productsResponse struct {
	Success bool             `json:"success"`
	Data    []models.Product `json:"data"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

func listProducts(t *testing.T, r *gin.Engine, query string) productsResponse {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp productsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp
}

func seedCatalog(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&models.Product{
			Name:     fmt.Sprintf("Product %02d", i),
			Price:    float64(i),
			Category: []string{"shoes", "hats"}[i%2],
		}).Error)
	}
}

func TestGetProductsDefaultPagination(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db, 12)
	r := testRouter(db)

	resp := listProducts(t, r, "")
	require.Equal(t, 1, resp.Page)
	require.Equal(t, 9, resp.Limit)
	require.EqualValues(t, 12, resp.Total)
	require.Len(t, resp.Data, 9)
	require.Equal(t, "Product 01", resp.Data[0].Name)

	second := listProducts(t, r, "?page=2")
	require.Len(t, second.Data, 3)
	require.Equal(t, "Product 10", second.Data[0].Name)
}

func TestGetProductsPaginationBounds(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db, 3)
	r := testRouter(db)

	// non-positive values fall back to the defaults
	resp := listProducts(t, r, "?page=0&limit=-5")
	require.Equal(t, 1, resp.Page)
	require.Equal(t, 9, resp.Limit)
	require.Len(t, resp.Data, 3)

	// a page past the end is empty, not an error
	past := listProducts(t, r, "?page=9")
	require.Empty(t, past.Data)
	require.EqualValues(t, 3, past.Total)
}

func TestGetProductsSortModes(t *testing.T) {
	db := testDB(t)
	for _, p := range []models.Product{
		{Name: "Mid", Price: 20},
		{Name: "Cheap", Price: 5},
		{Name: "Dear", Price: 50},
	} {
		require.NoError(t, db.Create(&p).Error)
	}
	r := testRouter(db)

	low := listProducts(t, r, "?sort=price-low")
	require.Equal(t, []string{"Cheap", "Mid", "Dear"}, names(low.Data))

	high := listProducts(t, r, "?sort=price-high")
	require.Equal(t, []string{"Dear", "Mid", "Cheap"}, names(high.Data))

	latest := listProducts(t, r, "?sort=latest")
	require.Equal(t, []string{"Dear", "Cheap", "Mid"}, names(latest.Data))

	def := listProducts(t, r, "?sort=default")
	require.Equal(t, []string{"Mid", "Cheap", "Dear"}, names(def.Data))
}

func TestGetProductsCategoryFilter(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db, 10)
	r := testRouter(db)

	resp := listProducts(t, r, "?category=shoes")
	require.EqualValues(t, 5, resp.Total)
	for _, p := range resp.Data {
		require.Equal(t, "shoes", p.Category)
	}
}

func TestGetProductsSearchIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	for _, name := range []string{"Red Shirt", "Blue shirt", "Green Hat"} {
		require.NoError(t, db.Create(&models.Product{Name: name, Price: 10}).Error)
	}
	r := testRouter(db)

	resp := listProducts(t, r, "?search=SHIRT")
	require.EqualValues(t, 2, resp.Total)
	require.ElementsMatch(t, []string{"Red Shirt", "Blue shirt"}, names(resp.Data))
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
