// internal/pkg/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	DeliveryPropagate = "propagate-errors"
	DeliverySwallow   = "swallow-errors"
)

// Config 是所有服务共用的配置结构，启动时读取一次。
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Store   StoreConfig   `yaml:"store"`
	Infra   InfraConfig   `yaml:"infra"`
	Events  EventsConfig  `yaml:"events"`
}

type ServiceConfig struct {
	Name     string `yaml:"name"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
}

type StoreConfig struct {
	Driver        string      `yaml:"driver"`
	MySQL         MySQLConfig `yaml:"mysql"`
	ProductsTable string      `yaml:"productsTable"`
	OrdersTable   string      `yaml:"ordersTable"`
	OutboxTable   string      `yaml:"outboxTable"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type InfraConfig struct {
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Jaeger JaegerConfig `yaml:"jaeger"`
}

type RedisConfig struct {
	Addrs       []string `yaml:"addrs"`
	EventsTable string   `yaml:"eventsTable"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	OrderEventsTopic string   `yaml:"orderEventsTopic"`
	GroupID          string   `yaml:"groupId"`
}

type JaegerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// EventsConfig 描述事件投递的方式与策略。
type EventsConfig struct {
	OrderDelivery         string        `yaml:"orderDelivery"`
	ProductDelivery       string        `yaml:"productDelivery"`
	ProductEventsFunction string        `yaml:"productEventsFunction"`
	FunctionsBaseURL      string        `yaml:"functionsBaseUrl"`
	OutboxInterval        time.Duration `yaml:"outboxInterval"`
	OutboxGrace           time.Duration `yaml:"outboxGrace"`
	OutboxBatch           int           `yaml:"outboxBatch"`
}

// Default 返回本地开发环境可直接使用的默认配置。
func Default(serviceName string, port int) *Config {
	return &Config{
		Service: ServiceConfig{Name: serviceName, Port: port, LogLevel: "info"},
		Store: StoreConfig{
			Driver: DriverMySQL,
			MySQL: MySQLConfig{
				Host: "localhost", Port: 3306,
				User: "root", Password: "root", Database: "ecommerce",
			},
			ProductsTable: "products",
			OrdersTable:   "orders",
			OutboxTable:   "order_outbox",
		},
		Infra: InfraConfig{
			Redis: RedisConfig{Addrs: []string{"localhost:6379"}, EventsTable: "events"},
			Kafka: KafkaConfig{
				Brokers:          []string{"localhost:9092"},
				OrderEventsTopic: "order-events",
				GroupID:          "events-service",
			},
			Jaeger: JaegerConfig{Enabled: true, Endpoint: "http://localhost:14268/api/traces"},
		},
		Events: EventsConfig{
			OrderDelivery:         DeliveryPropagate,
			ProductDelivery:       DeliverySwallow,
			ProductEventsFunction: "product-events",
			FunctionsBaseURL:      "http://localhost:8083",
			OutboxInterval:        5 * time.Second,
			OutboxGrace:           10 * time.Second,
			OutboxBatch:           100,
		},
	}
}

// Load 按 默认值 -> CONFIG_FILE 指定的 YAML -> 环境变量 的顺序合并配置。
func Load(serviceName string, port int) (*Config, error) {
	cfg := Default(serviceName, port)

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Service.Name = getEnv("SERVICE_NAME", cfg.Service.Name)
	cfg.Service.LogLevel = getEnv("LOG_LEVEL", cfg.Service.LogLevel)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.MySQL.Host = getEnv("MYSQL_HOST", cfg.Store.MySQL.Host)
	cfg.Store.MySQL.User = getEnv("MYSQL_USER", cfg.Store.MySQL.User)
	cfg.Store.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Store.MySQL.Password)
	cfg.Store.MySQL.Database = getEnv("MYSQL_DATABASE", cfg.Store.MySQL.Database)
	cfg.Store.ProductsTable = getEnv("PRODUCTS_TABLE", cfg.Store.ProductsTable)
	cfg.Store.OrdersTable = getEnv("ORDERS_TABLE", cfg.Store.OrdersTable)
	cfg.Store.OutboxTable = getEnv("OUTBOX_TABLE", cfg.Store.OutboxTable)

	cfg.Infra.Redis.Addrs = getEnvList("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	cfg.Infra.Redis.EventsTable = getEnv("EVENTS_TABLE", cfg.Infra.Redis.EventsTable)
	cfg.Infra.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Infra.Kafka.Brokers)
	cfg.Infra.Kafka.OrderEventsTopic = getEnv("ORDER_EVENTS_TOPIC", cfg.Infra.Kafka.OrderEventsTopic)
	cfg.Infra.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Infra.Kafka.GroupID)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)

	cfg.Events.OrderDelivery = getEnv("ORDER_EVENTS_DELIVERY", cfg.Events.OrderDelivery)
	cfg.Events.ProductDelivery = getEnv("PRODUCT_EVENTS_DELIVERY", cfg.Events.ProductDelivery)
	cfg.Events.ProductEventsFunction = getEnv("PRODUCT_EVENTS_FUNCTION", cfg.Events.ProductEventsFunction)
	cfg.Events.FunctionsBaseURL = getEnv("FUNCTIONS_BASE_URL", cfg.Events.FunctionsBaseURL)

	var err error
	if cfg.Service.Port, err = getEnvInt("HTTP_PORT", cfg.Service.Port); err != nil {
		return err
	}
	if cfg.Store.MySQL.Port, err = getEnvInt("MYSQL_PORT", cfg.Store.MySQL.Port); err != nil {
		return err
	}
	if cfg.Events.OutboxBatch, err = getEnvInt("OUTBOX_BATCH", cfg.Events.OutboxBatch); err != nil {
		return err
	}
	if cfg.Events.OutboxInterval, err = getEnvDuration("OUTBOX_INTERVAL", cfg.Events.OutboxInterval); err != nil {
		return err
	}
	if cfg.Events.OutboxGrace, err = getEnvDuration("OUTBOX_GRACE", cfg.Events.OutboxGrace); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("TRACING_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "TRACING_ENABLED=%q", v)
		}
		cfg.Infra.Jaeger.Enabled = enabled
	}
	return nil
}

// Validate 检查取值范围，非法配置在启动阶段直接失败。
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMySQL, DriverMemory:
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}
	for _, policy := range []string{c.Events.OrderDelivery, c.Events.ProductDelivery} {
		if policy != DeliveryPropagate && policy != DeliverySwallow {
			return errors.Errorf("unknown delivery policy %q", policy)
		}
	}
	if c.Events.OutboxInterval <= 0 {
		return errors.New("outbox interval must be positive")
	}
	if c.Events.OutboxBatch <= 0 {
		return errors.New("outbox batch must be positive")
	}
	return nil
}

// getEnv 从环境变量中读取配置，不存在时使用 fallback。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s=%q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s=%q", key, value)
	}
	return d, nil
}
