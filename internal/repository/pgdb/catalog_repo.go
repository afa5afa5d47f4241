package pgdb

import (
	"context"
	"encoding/json"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
)

// CatalogRepo реализует хранилище каталога поверх PostgreSQL.
// Группы полей поставщика и витрины лежат в отдельных JSONB-колонках:
// конкурентные upsert-ы одного кода из разных путей синхронизации
// не затирают чужую группу.
type CatalogRepo struct {
	pool *pgxpool.Pool
	conv *converter.CatalogConverter
}

func NewCatalogRepo(pool *pgxpool.Pool, conv *converter.CatalogConverter) *CatalogRepo {
	return &CatalogRepo{
		pool: pool,
		conv: conv,
	}
}

// UpsertSupplier идемпотентно записывает группу полей поставщика:
// сырую позицию и её каноническую форму. Повтор с тем же входом
// оставляет хранимое состояние неизменным.
func (r *CatalogRepo) UpsertSupplier(ctx context.Context, item *domain.SupplierItem, canonical *domain.CanonicalItem) error {
	if item.Code == "" {
		return e.WrapKind(e.ErrStore, e.ErrCodeRequired)
	}

	supplierJSON, err := json.Marshal(r.conv.SupplierToModel(item))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	canonicalJSON, err := json.Marshal(r.conv.CanonicalToModel(canonical))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO catalog_records (code, supplier, canonical)
		VALUES ($1, $2, $3)
		ON CONFLICT (code)
		DO UPDATE SET
			supplier = EXCLUDED.supplier,
			canonical = EXCLUDED.canonical,
			updated_at = NOW();
	`

	if _, err := r.pool.Exec(ctx, query, item.Code, supplierJSON, canonicalJSON); err != nil {
		return e.WrapKind(e.ErrStore, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// UpsertStorefront идемпотентно записывает группу кураторских полей витрины,
// не затрагивая поля поставщика.
func (r *CatalogRepo) UpsertStorefront(ctx context.Context, code string, override *domain.StorefrontOverride) error {
	if code == "" {
		return e.WrapKind(e.ErrStore, e.ErrCodeRequired)
	}

	storefrontJSON, err := json.Marshal(r.conv.StorefrontToModel(override))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO catalog_records (code, storefront)
		VALUES ($1, $2)
		ON CONFLICT (code)
		DO UPDATE SET
			storefront = EXCLUDED.storefront,
			updated_at = NOW();
	`

	if _, err := r.pool.Exec(ctx, query, code, storefrontJSON); err != nil {
		return e.WrapKind(e.ErrStore, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// FindConverted возвращает поток сконвертированных записей,
// упорядоченных по коду. Записи вычитываются построчно.
func (r *CatalogRepo) FindConverted(ctx context.Context) (usecase.RecordStream, error) {
	query := `
		SELECT code, supplier, canonical, storefront, created_at, updated_at
		FROM catalog_records
		WHERE canonical IS NOT NULL
		ORDER BY code ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.WrapKind(e.ErrStore, e.Wrap(whereami.WhereAmI(), err))
	}

	return &RecordRows{rows: rows, conv: r.conv}, nil
}

// RecordRows — потоковый курсор по записям каталога.
// Реализует источник записей для экспорта (io.EOF в конце).
type RecordRows struct {
	rows pgx.Rows
	conv *converter.CatalogConverter
}

// Next возвращает следующую запись либо io.EOF.
func (r *RecordRows) Next() (*domain.CatalogRecord, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, e.WrapKind(e.ErrStore, e.Wrap(whereami.WhereAmI(), err))
		}

		return nil, io.EOF
	}

	var (
		model          converter.RecordModel
		supplierJSON   []byte
		canonicalJSON  []byte
		storefrontJSON []byte
	)

	if err := r.rows.Scan(
		&model.Code, &supplierJSON, &canonicalJSON, &storefrontJSON,
		&model.CreatedAt, &model.UpdatedAt,
	); err != nil {
		return nil, e.WrapKind(e.ErrStore, e.Wrap(whereami.WhereAmI(), err))
	}

	if err := unmarshalGroup(supplierJSON, &model.Supplier); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := unmarshalGroup(canonicalJSON, &model.Canonical); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := unmarshalGroup(storefrontJSON, &model.Storefront); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.RecordToEntity(&model), nil
}

func (r *RecordRows) Close() {
	r.rows.Close()
}

// unmarshalGroup распаковывает JSONB-колонку группы полей; NULL остаётся nil.
func unmarshalGroup[T any](data []byte, target **T) error {
	if len(data) == 0 {
		return nil
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return err
	}

	*target = value
	return nil
}
