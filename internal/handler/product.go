package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// listProducts resolves the current product list through the cache-aware
// orchestration and renders it as a JSON array.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeProducts(products))
}

func encodeProducts(products []product.Product) []byte {
	e := &jx.Encoder{}
	e.ArrStart()
	for _, p := range products {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(p.ID)
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("description")
		e.Str(p.Description)
		e.FieldStart("price")
		e.Num(jx.Num(p.Price.String()))
		e.FieldStart("imageUrl")
		e.Str(p.ImageURL)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}
