package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

type Config struct {
	Http       *HTTPConfig
	Db         *PGDBCfg
	Redis      *RedisCfg
	Kafka      *KafkaCfg
	Minio      *MinIOCfg
	Supplier   *SupplierCfg
	Storefront *StorefrontCfg
	Catalog    *CatalogCfg
	Sync       *SyncCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	// JobTTL — срок хранения завершённых задач; 0 — хранить бессрочно.
	JobTTL time.Duration
}

type KafkaCfg struct {
	Topic             string
	GroupID           string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для опубликованных экспортных фидов
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	ExportPrefix      string // префикс ключей объектов с экспортом
}

// SupplierCfg описывает доступ к фиду поставщика.
type SupplierCfg struct {
	CatalogRequestURL string // URL запроса на генерацию фида
	Login             string
	Password          string
	HTTPTimeout       time.Duration
	RequestsPerMinute int // лимит исходящих запросов к API поставщика
}

// StorefrontCfg описывает доступ к экспорту витрины.
type StorefrontCfg struct {
	CatalogURL  string // URL CSV-экспорта витрины
	HTTPTimeout time.Duration
}

// CatalogCfg задаёт правила конвертации и слияния каталога.
// Текстовые метки — локальные данные витрины, не логика: меняются конфигурацией.
type CatalogCfg struct {
	CategoryName string // маркер категории по названию комодитной группы
	CategoryCode string // маркер категории по коду комодитной группы
	Currency     string

	AvailabilityOnStock string // метка "доступно у поставщика"
	AvailabilityNoStock string // метка "не на складе"
	ReadyToShipLabel    string // метка витрины, которую перекрывает каноническая доступность
	OutOfStockLeadTime  string // срок поставки для новых позиций
	InvalidEANFallback  string // значение EAN для кодов невалидной длины ("" либо заглушка)
}

type SyncCfg struct {
	// ReportPeriod — раз в сколько позиций сохранять прогресс задачи.
	ReportPeriod int
	// Workers — количество горутин-воркеров, потребляющих очередь задач.
	Workers int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	supplier, err := loadSupplierCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	storefront, err := loadStorefrontCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sync, err := loadSyncCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:       http,
		Db:         db,
		Redis:      redis,
		Kafka:      kafka,
		Minio:      minio,
		Supplier:   supplier,
		Storefront: storefront,
		Catalog:    loadCatalogCfg(),
		Sync:       sync,
	}, nil
}

func loadSupplierCfg() (*SupplierCfg, error) {
	const (
		defaultHTTPTimeout       = 5 * time.Minute
		defaultRequestsPerMinute = 10
	)

	requestURL := os.Getenv("SUPPLIER_CATALOG_REQUEST_URL")
	if requestURL == "" {
		return nil, fmt.Errorf("SUPPLIER_CATALOG_REQUEST_URL environment variable is required")
	}

	httpTimeout, err := parseDurationEnv("SUPPLIER_HTTP_TIMEOUT", defaultHTTPTimeout)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_HTTP_TIMEOUT", err)
	}

	rpm, err := parseIntEnv("SUPPLIER_REQUESTS_PER_MINUTE", defaultRequestsPerMinute)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_REQUESTS_PER_MINUTE", err)
	}

	return &SupplierCfg{
		CatalogRequestURL: requestURL,
		Login:             getEnv("SUPPLIER_LOGIN"),
		Password:          getEnv("SUPPLIER_PASSWORD"),
		HTTPTimeout:       httpTimeout,
		RequestsPerMinute: rpm,
	}, nil
}

func loadStorefrontCfg() (*StorefrontCfg, error) {
	const defaultHTTPTimeout = 2 * time.Minute

	catalogURL := os.Getenv("STOREFRONT_CATALOG_URL")
	if catalogURL == "" {
		return nil, fmt.Errorf("STOREFRONT_CATALOG_URL environment variable is required")
	}

	httpTimeout, err := parseDurationEnv("STOREFRONT_HTTP_TIMEOUT", defaultHTTPTimeout)
	if err != nil {
		return nil, e.Wrap("STOREFRONT_HTTP_TIMEOUT", err)
	}

	return &StorefrontCfg{
		CatalogURL:  catalogURL,
		HTTPTimeout: httpTimeout,
	}, nil
}

func loadCatalogCfg() *CatalogCfg {
	const (
		defaultCategoryName = "3D TISK"
		defaultCategoryCode = "3DP"
		defaultCurrency     = "CZK"
		defaultOnStock      = "Externí sklad"
		defaultNoStock      = "Není skladem"
		defaultReadyToShip  = "Ihned k odeslání"
		defaultLeadTime     = "14 dní"
	)

	return &CatalogCfg{
		CategoryName:        getEnvOrDefault("CATALOG_CATEGORY_NAME", defaultCategoryName),
		CategoryCode:        getEnvOrDefault("CATALOG_CATEGORY_CODE", defaultCategoryCode),
		Currency:            getEnvOrDefault("CATALOG_CURRENCY", defaultCurrency),
		AvailabilityOnStock: getEnvOrDefault("CATALOG_AVAILABILITY_ON_STOCK", defaultOnStock),
		AvailabilityNoStock: getEnvOrDefault("CATALOG_AVAILABILITY_NO_STOCK", defaultNoStock),
		ReadyToShipLabel:    getEnvOrDefault("CATALOG_READY_TO_SHIP_LABEL", defaultReadyToShip),
		OutOfStockLeadTime:  getEnvOrDefault("CATALOG_OUT_OF_STOCK_LEAD_TIME", defaultLeadTime),
		// по умолчанию невалидный EAN опускается; альтернатива — заглушка из 13 нулей
		InvalidEANFallback: getEnv("CATALOG_INVALID_EAN_FALLBACK"),
	}
}

func loadSyncCfg() (*SyncCfg, error) {
	const (
		defaultReportPeriod = 1000
		defaultWorkers      = 2
	)

	reportPeriod, err := parseIntEnv("SYNC_REPORT_PERIOD", defaultReportPeriod)
	if err != nil {
		return nil, e.Wrap("SYNC_REPORT_PERIOD", err)
	}

	workers, err := parseIntEnv("SYNC_WORKERS", defaultWorkers)
	if err != nil {
		return nil, e.Wrap("SYNC_WORKERS", err)
	}

	return &SyncCfg{
		ReportPeriod: reportPeriod,
		Workers:      workers,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultGroupID           = "catalog-sync-workers"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		GroupID:           getEnvOrDefault("KAFKA_GROUP_ID", defaultGroupID),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL       = false
		defaultEndpoint     = "minio:9000"
		defaultExportPrefix = "exports/"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		ExportPrefix:      getEnvOrDefault("MINIO_EXPORT_PREFIX", defaultExportPrefix),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultJobTTL       = time.Duration(0)
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	jobTTL, err := parseDurationEnv("JOB_TTL", defaultJobTTL)
	if err != nil {
		log.Errorf(err, "invalid JOB_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		JobTTL:      jobTTL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("incorrect value of %s: %q", key, v)
	}

	return intValue, nil
}
