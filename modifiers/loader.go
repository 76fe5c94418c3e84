/*
loader.go - Loads a Graph from a store's SQLite catalog database

GROUNDED ON:
  store/sqlite/sqlite.go's migrate-then-query shape: open once, run a
  handful of SELECTs, build an in-memory structure, and never touch the
  connection again for this purpose (spec.md §5: "loads its graph once at
  store activation into immutable in-memory maps; no concurrent writers").
*/
package modifiers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// LoadFromDB reads the modifier schema contract (spec.md §6) from db and
// returns an immutable Graph. The optional tables (implications,
// incompatibilities, group incompatibilities) are tolerated as absent.
func LoadFromDB(ctx context.Context, db *sql.DB) (Graph, error) {
	graph := Graph{
		Modifiers:               make(map[string]Modifier),
		Groups:                  make(map[string]Group),
		Applicability:           make(map[string]map[string]bool),
		Implications:            make(map[string]map[string]bool),
		ModifierIncompatibility: make(map[string]map[string]bool),
		GroupIncompatibility:    make(map[string]map[string]bool),
	}

	if err := loadGroups(ctx, db, &graph); err != nil {
		return Graph{}, err
	}
	if err := loadModifiers(ctx, db, &graph); err != nil {
		return Graph{}, err
	}
	if err := loadApplicability(ctx, db, &graph); err != nil {
		return Graph{}, err
	}
	loadOptionalEdges(ctx, db, "modification_implications", "source_modification_id", "implied_modification_id", graph.Implications)
	loadOptionalEdges(ctx, db, "modification_incompatibilities", "modification_id", "incompatible_modification_id", graph.ModifierIncompatibility)
	loadOptionalGroupEdges(ctx, db, graph.GroupIncompatibility)

	return graph, nil
}

func loadGroups(ctx context.Context, db *sql.DB, graph *Graph) error {
	rows, err := db.QueryContext(ctx, `SELECT code, name, selection_type, is_required FROM modification_groups`)
	if err != nil {
		return fmt.Errorf("modifiers: load groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, name, selectionType string
		var isRequired int
		if err := rows.Scan(&code, &name, &selectionType, &isRequired); err != nil {
			return fmt.Errorf("modifiers: scan group: %w", err)
		}
		graph.Groups[normalizeId(code)] = Group{
			Code:         code,
			Name:         name,
			SingleSelect: selectionType == "single",
			Required:     isRequired != 0,
		}
	}
	return rows.Err()
}

func loadModifiers(ctx context.Context, db *sql.DB, graph *Graph) error {
	rows, err := db.QueryContext(ctx, `
		SELECT m.modification_id, m.name, m.price_adjustment_type, m.base_price_cents,
		       m.is_automatic, m.display_order, g.group_code
		FROM product_modifications m
		LEFT JOIN modification_group_members g ON g.modification_id = m.modification_id
		WHERE m.is_active = 1`)
	if err != nil {
		return fmt.Errorf("modifiers: load modifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name, adjustmentType string
		var basePriceCents int64
		var isAutomatic int
		var displayOrder int
		var groupCode sql.NullString
		if err := rows.Scan(&id, &name, &adjustmentType, &basePriceCents, &isAutomatic, &displayOrder, &groupCode); err != nil {
			return fmt.Errorf("modifiers: scan modifier: %w", err)
		}

		kind := Free
		if adjustmentType == "SURCHARGE" {
			kind = Surcharge
		}

		graph.Modifiers[normalizeId(id)] = Modifier{
			ID:             id,
			Name:           name,
			GroupCode:      groupCode.String,
			AdjustmentKind: kind,
			Value:          decimal.NewFromInt(basePriceCents).Div(decimal.NewFromInt(100)),
			IsAutomatic:    isAutomatic != 0,
			DisplayOrder:   displayOrder,
		}
	}
	return rows.Err()
}

func loadApplicability(ctx context.Context, db *sql.DB, graph *Graph) error {
	rows, err := db.QueryContext(ctx, `SELECT sku, modification_id FROM product_modifier_applicability WHERE is_active = 1`)
	if err != nil {
		return fmt.Errorf("modifiers: load applicability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku, modificationId string
		if err := rows.Scan(&sku, &modificationId); err != nil {
			return fmt.Errorf("modifiers: scan applicability: %w", err)
		}
		key := normalizeId(sku)
		if graph.Applicability[key] == nil {
			graph.Applicability[key] = make(map[string]bool)
		}
		graph.Applicability[key][normalizeId(modificationId)] = true
	}
	return rows.Err()
}

// loadOptionalEdges tolerates the table being entirely absent: the
// optional relation tables in spec.md §6 are advisory metadata.
func loadOptionalEdges(ctx context.Context, db *sql.DB, table, fromCol, toCol string, into map[string]map[string]bool) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s", fromCol, toCol, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return // table absent: nothing to load
	}
	defer rows.Close()

	for rows.Next() {
		var from, to string
		if rows.Scan(&from, &to) != nil {
			continue
		}
		key := normalizeId(from)
		if into[key] == nil {
			into[key] = make(map[string]bool)
		}
		into[key][normalizeId(to)] = true
	}
}

func loadOptionalGroupEdges(ctx context.Context, db *sql.DB, into map[string]map[string]bool) {
	rows, err := db.QueryContext(ctx, `SELECT modification_id, incompatible_group_code FROM modification_group_incompatibilities`)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var modificationId, groupCode string
		if rows.Scan(&modificationId, &groupCode) != nil {
			continue
		}
		key := normalizeId(modificationId)
		if into[key] == nil {
			into[key] = make(map[string]bool)
		}
		into[key][normalizeId(groupCode)] = true
	}
}
