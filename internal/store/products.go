package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
)

type ProductFilter struct {
	CategoryID     int64
	ManufacturerID int64
	Search         string
	Language       string
}

func ListCategoriesWithCount(ctx context.Context, q Querier, lang string) ([]models.Category, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, COALESCE(cl.name, c.name), COUNT(p.id)
		 FROM categories c
		 LEFT JOIN category_localization cl
		        ON cl.category_id = c.id AND cl.language_code = $1
		 LEFT JOIN products p ON p.category_id = c.id
		 GROUP BY c.id, cl.name, c.name
		 ORDER BY c.id`, lang)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return categories, nil
}

const productSelect = `
	SELECT p.id, COALESCE(pl.name, p.name), COALESCE(pl.description, ''), p.price,
	       COALESCE(p.image_url, ''), COALESCE(p.variation, ''),
	       c.id, c.name, m.id, m.name
	FROM products p
	LEFT JOIN product_localization pl
	       ON pl.product_id = p.id AND pl.language_code = $1
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN manufacturers m ON m.id = p.manufacturer_id`

// ListProducts filters by category, manufacturer and a case-insensitive
// search over the localized and base names.
func ListProducts(ctx context.Context, q Querier, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	where, args := productWhere(filter)

	var total int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM products p
		 LEFT JOIN product_localization pl
		        ON pl.product_id = p.id AND pl.language_code = $1`+where,
		args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	n := len(args)
	query := productSelect + where +
		fmt.Sprintf("\n\tORDER BY p.id\n\tLIMIT $%d OFFSET $%d", n+1, n+2)

	rows, err := q.QueryContext(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func productWhere(filter ProductFilter) (string, []any) {
	args := []any{filter.Language}
	var conds []string

	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.ManufacturerID > 0 {
		args = append(args, filter.ManufacturerID)
		conds = append(conds, fmt.Sprintf("p.manufacturer_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conds = append(conds, fmt.Sprintf("COALESCE(pl.name, p.name) ILIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\n\tWHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func GetProductDetails(ctx context.Context, q Querier, id int64, lang string) (*models.Product, error) {
	product, err := scanProduct(q.QueryRowContext(ctx, productSelect+"\n\tWHERE p.id = $2", lang, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var (
		categoryID, manufacturerID     sql.NullInt64
		categoryName, manufacturerName sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Variation,
		&categoryID,
		&categoryName,
		&manufacturerID,
		&manufacturerName,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		p.Category = &models.Category{ID: categoryID.Int64, Name: categoryName.String}
	}
	if manufacturerID.Valid {
		p.Manufacturer = &models.Manufacturer{ID: manufacturerID.Int64, Name: manufacturerName.String}
	}
	return p, nil
}

// GetProductStock returns 0 when the product has no stock row at the location.
func GetProductStock(ctx context.Context, q Querier, productID, locationID int64) (int, error) {
	var quantity int
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM product_stock WHERE product_id = $1 AND location_id = $2`,
		productID, locationID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get product stock: %w", err)
	}
	return quantity, nil
}

func ListProductStock(ctx context.Context, q Querier, productID int64) ([]models.StockLevel, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.name, COALESCE(l.address, ''), s.quantity
		 FROM product_stock s
		 JOIN locations l ON l.id = s.location_id
		 WHERE s.product_id = $1
		 ORDER BY l.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product stock: %w", err)
	}
	defer rows.Close()

	var levels []models.StockLevel
	for rows.Next() {
		var s models.StockLevel
		if err := rows.Scan(&s.Location.ID, &s.Location.Name, &s.Location.Address, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return levels, nil
}
