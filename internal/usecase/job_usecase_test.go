package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/internal/export"
	"github.com/s3dt-tech/catalog-backend/internal/transform"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// --- фейки хранилищ и инфраструктуры ---

type fakeJobRepo struct {
	jobs     map[string]domain.Job
	canceled map[string]bool
	saves    int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:     make(map[string]domain.Job),
		canceled: make(map[string]bool),
	}
}

func (f *fakeJobRepo) Save(ctx context.Context, job *domain.Job) error {
	f.jobs[job.ID] = *job
	f.saves++
	return nil
}

func (f *fakeJobRepo) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, e.ErrJobNotFound
	}

	return &job, nil
}

func (f *fakeJobRepo) RequestCancel(ctx context.Context, id string) error {
	f.canceled[id] = true
	return nil
}

func (f *fakeJobRepo) CancelRequested(ctx context.Context, id string) (bool, error) {
	return f.canceled[id], nil
}

type supplierUpsert struct {
	item      *domain.SupplierItem
	canonical *domain.CanonicalItem
}

// fakeCatalogRepo хранит записи по коду, как и реальное хранилище:
// повторный апсерт того же кода перезаписывает запись, а не дублирует её.
type fakeCatalogRepo struct {
	supplierOrder     []string
	supplierUpserts   map[string]supplierUpsert
	storefrontUpserts map[string]*domain.StorefrontOverride
	records           []*domain.CatalogRecord
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		supplierUpserts:   make(map[string]supplierUpsert),
		storefrontUpserts: make(map[string]*domain.StorefrontOverride),
	}
}

func (f *fakeCatalogRepo) UpsertSupplier(ctx context.Context, item *domain.SupplierItem, canonical *domain.CanonicalItem) error {
	if _, ok := f.supplierUpserts[item.Code]; !ok {
		f.supplierOrder = append(f.supplierOrder, item.Code)
	}
	f.supplierUpserts[item.Code] = supplierUpsert{item: item, canonical: canonical}

	return nil
}

func (f *fakeCatalogRepo) UpsertStorefront(ctx context.Context, code string, override *domain.StorefrontOverride) error {
	f.storefrontUpserts[code] = override
	return nil
}

// FindConverted собирает записи из апсертов; явно заданный records
// подменяет содержимое каталога целиком.
func (f *fakeCatalogRepo) FindConverted(ctx context.Context) (RecordStream, error) {
	records := f.records
	if records == nil {
		for _, code := range f.supplierOrder {
			up := f.supplierUpserts[code]
			records = append(records, &domain.CatalogRecord{
				Code:       code,
				Supplier:   up.item,
				Canonical:  up.canonical,
				Storefront: f.storefrontUpserts[code],
			})
		}
	}

	return &fakeRecordStream{records: records}, nil
}

type fakeRecordStream struct {
	records []*domain.CatalogRecord
	pos     int
}

func (f *fakeRecordStream) Next() (*domain.CatalogRecord, error) {
	if f.pos >= len(f.records) {
		return nil, io.EOF
	}

	rec := f.records[f.pos]
	f.pos++

	return rec, nil
}

func (f *fakeRecordStream) Close() {}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) Publish(ctx context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}

	f.published = append(f.published, jobID)
	return nil
}

// fakeSupplierStream отдаёт позиции из среза; onServe позволяет
// вмешаться между позициями (например, запросить отмену).
type fakeSupplierStream struct {
	items   []*domain.SupplierItem
	pos     int
	closed  bool
	onServe func(served int)
}

func (f *fakeSupplierStream) Next() (*domain.SupplierItem, error) {
	if f.pos >= len(f.items) {
		return nil, io.EOF
	}

	item := f.items[f.pos]
	f.pos++
	if f.onServe != nil {
		f.onServe(f.pos)
	}

	return item, nil
}

func (f *fakeSupplierStream) Close() error {
	f.closed = true
	return nil
}

type fakeSupplierFeed struct {
	stream     *fakeSupplierStream
	resolveErr error
	openErr    error
}

func (f *fakeSupplierFeed) ResolveCatalogURL(ctx context.Context) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}

	return "https://feed.example.com/catalog.xml", nil
}

func (f *fakeSupplierFeed) Open(ctx context.Context, catalogURL string) (SupplierStream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}

	return f.stream, nil
}

type fakeStorefrontStream struct {
	rows   []*StorefrontRow
	pos    int
	closed bool
}

func (f *fakeStorefrontStream) Next() (*StorefrontRow, error) {
	if f.pos >= len(f.rows) {
		return nil, io.EOF
	}

	row := f.rows[f.pos]
	f.pos++

	return row, nil
}

func (f *fakeStorefrontStream) Close() error {
	f.closed = true
	return nil
}

type fakeStorefrontFeed struct {
	stream *fakeStorefrontStream
}

func (f *fakeStorefrontFeed) Open(ctx context.Context) (StorefrontStream, error) {
	return f.stream, nil
}

// --- фикстуры ---

func testTransformer() *transform.Transformer {
	return transform.NewTransformer(transform.Options{
		CategoryName:        "3D TISK",
		CategoryCode:        "3DP",
		Currency:            "CZK",
		AvailabilityOnStock: "Externí sklad",
		AvailabilityNoStock: "Není skladem",
	})
}

func supplierItemFixture(code string) *domain.SupplierItem {
	return &domain.SupplierItem{
		Code:              code,
		Name:              "Filament PLA 1kg",
		EndUserPrice:      "1000",
		YourPriceWithFees: "800.50",
		Vat:               "21",
		OnStockText:       "12,00",
		OnStock:           true,
		EANCode:           "8594045931525",
		CommodityName:     "3D TISK",
		CommodityCode:     "3DP",
	}
}

type ucFixture struct {
	jobRepo     *fakeJobRepo
	catalogRepo *fakeCatalogRepo
	queue       *fakeQueue
	supplier    *fakeSupplierFeed
	storefront  *fakeStorefrontFeed
	uc          *JobUseCase
}

func newUCFixture(reportPeriod int) *ucFixture {
	f := &ucFixture{
		jobRepo:     newFakeJobRepo(),
		catalogRepo: newFakeCatalogRepo(),
		queue:       &fakeQueue{},
		supplier:    &fakeSupplierFeed{stream: &fakeSupplierStream{}},
		storefront:  &fakeStorefrontFeed{stream: &fakeStorefrontStream{}},
	}

	f.uc = NewJobUC(
		f.jobRepo,
		f.catalogRepo,
		f.queue,
		f.supplier,
		f.storefront,
		testTransformer(),
		reportPeriod,
		logger.NewSlogLogger(),
	)

	return f
}

// --- тесты ---

func TestEnqueue(t *testing.T) {
	f := newUCFixture(1000)

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobStateQueued, job.State)
	assert.Equal(t, []string{job.ID}, f.queue.published)

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateQueued, saved.State)
}

func TestEnqueuePublishFailure(t *testing.T) {
	f := newUCFixture(1000)
	f.queue.err = fmt.Errorf("broker unavailable")

	_, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.Error(t, err)

	// Единственная сохранённая задача помечена как failed.
	require.Len(t, f.jobRepo.jobs, 1)
	for _, saved := range f.jobRepo.jobs {
		assert.Equal(t, domain.JobStateFailed, saved.State)
		assert.Contains(t, saved.ErrorDetail, "broker unavailable")
	}
}

func TestRunSupplierSync(t *testing.T) {
	f := newUCFixture(1000)

	outOfScope := supplierItemFixture("SKIP-1")
	outOfScope.CommodityName = "Notebooky"
	outOfScope.CommodityCode = "NTB"

	invalid := supplierItemFixture("BAD-1")
	invalid.EndUserPrice = "n/a"

	f.supplier.stream.items = []*domain.SupplierItem{
		supplierItemFixture("AB123"),
		outOfScope,
		invalid,
		supplierItemFixture("CD456"),
	}

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStateFinished, saved.State)
	assert.Equal(t, 4, saved.TotalItems)
	assert.Equal(t, 2, saved.SelectedItems)
	assert.Equal(t, 1, saved.SkippedItems)
	assert.Equal(t, "done", saved.Phase)
	assert.NotNil(t, saved.StartedAt)
	assert.NotNil(t, saved.FinishedAt)

	require.Len(t, f.catalogRepo.supplierUpserts, 2)
	assert.Equal(t, []string{"AB123", "CD456"}, f.catalogRepo.supplierOrder)
	assert.Equal(t, "1210.00", f.catalogRepo.supplierUpserts["AB123"].canonical.StandardPrice)

	assert.True(t, f.supplier.stream.closed)
}

// Повторная синхронизация того же фида не меняет каталог: апсерт
// идемпотентен по коду товара, и экспорт после двух прогонов байт в байт
// совпадает с экспортом после одного.
func TestRunSupplierSyncIdempotent(t *testing.T) {
	f := newUCFixture(1000)

	exporter := export.NewExporter(export.Options{
		ReadyToShipLabel:   "Ihned k odeslání",
		OutOfStockLeadTime: "14 dní",
	})

	exportCatalog := func() string {
		src, err := f.catalogRepo.FindConverted(context.Background())
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, exporter.Write(&buf, src))

		return buf.String()
	}

	runFeed := func() {
		f.supplier.stream = &fakeSupplierStream{items: []*domain.SupplierItem{
			supplierItemFixture("AB123"),
			supplierItemFixture("CD456"),
		}}

		job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
		require.NoError(t, err)
		require.NoError(t, f.uc.Run(context.Background(), job.ID))
	}

	runFeed()
	first := exportCatalog()

	runFeed()
	second := exportCatalog()

	require.Len(t, f.catalogRepo.supplierUpserts, 2)
	assert.Equal(t, []string{"AB123", "CD456"}, f.catalogRepo.supplierOrder)
	assert.Equal(t, first, second)
}

func TestRunStorefrontSync(t *testing.T) {
	f := newUCFixture(1000)

	f.storefront.stream.rows = []*StorefrontRow{
		{Code: "AB123", Override: domain.StorefrontOverride{Visible: true, AvailabilityInStock: "Skladem"}},
		{Code: "", Override: domain.StorefrontOverride{Visible: true}},
		{Code: "CD456", Override: domain.StorefrontOverride{Visible: false, AvailabilityInStock: "Není skladem"}},
	}

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindStorefrontSync)
	require.NoError(t, err)

	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStateFinished, saved.State)
	assert.Equal(t, 3, saved.TotalItems)
	assert.Equal(t, 2, saved.SelectedItems)
	assert.Equal(t, 1, saved.SkippedItems)

	require.Len(t, f.catalogRepo.storefrontUpserts, 2)
	assert.True(t, f.catalogRepo.storefrontUpserts["AB123"].Visible)
	assert.False(t, f.catalogRepo.storefrontUpserts["CD456"].Visible)
	assert.True(t, f.storefront.stream.closed)
}

func TestRunFeedFailureMarksJobFailed(t *testing.T) {
	f := newUCFixture(1000)
	f.supplier.resolveErr = e.WrapKind(e.ErrTransport, fmt.Errorf("supplier api: 503"))

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	err = f.uc.Run(context.Background(), job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrTransport))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, saved.State)
	assert.Equal(t, e.ErrTransport.Error(), saved.ErrorKind)
	assert.Contains(t, saved.ErrorDetail, "503")
}

func TestRunCanceledBeforeStart(t *testing.T) {
	f := newUCFixture(1000)

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	require.NoError(t, f.jobRepo.RequestCancel(context.Background(), job.ID))
	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCanceled, saved.State)
	assert.Zero(t, saved.TotalItems)
}

func TestRunCancelAtCheckpoint(t *testing.T) {
	f := newUCFixture(1)

	f.supplier.stream.items = []*domain.SupplierItem{
		supplierItemFixture("AB123"),
		supplierItemFixture("CD456"),
		supplierItemFixture("EF789"),
	}

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	// Отмена прилетает после первой позиции.
	f.supplier.stream.onServe = func(served int) {
		if served == 1 {
			f.jobRepo.canceled[job.ID] = true
		}
	}

	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCanceled, saved.State)

	// После контрольной точки новые позиции не вычитываются.
	assert.Equal(t, 1, f.supplier.stream.pos)
	assert.Equal(t, 1, saved.TotalItems)
}

// Флаг отмены опрашивается после каждой позиции, а не только на границе
// периода отчёта.
func TestRunCancelBetweenReportPeriods(t *testing.T) {
	f := newUCFixture(1000)

	f.supplier.stream.items = []*domain.SupplierItem{
		supplierItemFixture("AB123"),
		supplierItemFixture("CD456"),
		supplierItemFixture("EF789"),
	}

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	f.supplier.stream.onServe = func(served int) {
		if served == 1 {
			f.jobRepo.canceled[job.ID] = true
		}
	}

	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCanceled, saved.State)
	assert.Equal(t, 1, f.supplier.stream.pos)
}

func TestRunRedeliveredTerminalJob(t *testing.T) {
	f := newUCFixture(1000)

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)
	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	before, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	savesBefore := f.jobRepo.saves

	// Повторная доставка того же сообщения очереди ничего не меняет.
	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	after, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, savesBefore, f.jobRepo.saves)
}

func TestCancelQueuedJob(t *testing.T) {
	f := newUCFixture(1000)

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(context.Background(), job.ID))

	saved, err := f.jobRepo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCanceled, saved.State)
	assert.NotNil(t, saved.FinishedAt)
}

func TestCancelFinishedJob(t *testing.T) {
	f := newUCFixture(1000)

	job, err := f.uc.Enqueue(context.Background(), domain.JobKindSupplierSync)
	require.NoError(t, err)
	require.NoError(t, f.uc.Run(context.Background(), job.ID))

	err = f.uc.Cancel(context.Background(), job.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrJobAlreadyFinal)
}

func TestCancelUnknownJob(t *testing.T) {
	f := newUCFixture(1000)

	err := f.uc.Cancel(context.Background(), "no-such-job")
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrJobNotFound)
}

func TestStatusUnknownJob(t *testing.T) {
	f := newUCFixture(1000)

	_, err := f.uc.Status(context.Background(), "no-such-job")
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrJobNotFound)
}
