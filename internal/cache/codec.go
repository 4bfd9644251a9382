package cache

import (
	"bytes"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// encodeProducts serializes products as a JSON array, preserving order.
func encodeProducts(products []product.Product) ([]byte, error) {
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
	return e.Bytes(), nil
}

// decodeProducts parses a JSON array written by encodeProducts.
func decodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)

	var products []product.Product
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			var num jx.Num
			if num, err = d.Num(); err != nil {
				return err
			}
			p.Price, err = decimal.NewFromString(string(num))
		case "imageUrl":
			p.ImageURL, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}

// isGzip sniffs the two-byte gzip magic header.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := pgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
