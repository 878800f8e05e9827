package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config アプリ全体の設定
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// ServerConfig HTTP サーバ設定
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig クロスオリジン設定
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 接続設定
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN PostgreSQL 接続文字列を組み立てる
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis キャッシュ設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig ログ設定
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchedulingConfig 割当エンジンの調整値
//
// continuity_bonus / second_booking_penalty は優先度スコアへの加算定数。
// 「連続2コマ目は強く優遇、連続しない同日2コマ目は初回枠より必ず劣後」
// という相対順序を保てる値であること。
type SchedulingConfig struct {
	DailyCap             int    `mapstructure:"daily_cap"`              // 1人1日の上限コマ数
	LessonMinutes        int    `mapstructure:"lesson_minutes"`         // 終了時刻省略時に補う1コマの長さ（分）
	ContinuityBonus      int    `mapstructure:"continuity_bonus"`       // 連続コマへの加算（負値）
	SecondBookingPenalty int    `mapstructure:"second_booking_penalty"` // 非連続の同日2コマ目への加算（正値）
	ReferenceYear        int    `mapstructure:"reference_year"`         // 曜日・日付解決に使う年。0 なら現在年
	Seed                 int64  `mapstructure:"seed"`                   // 乱数シード。0 なら時刻シード
	CalendarTimezone     string `mapstructure:"calendar_timezone"`      // iCal 出力のタイムゾーン
}

// Load 設定ファイルと環境変数から設定を読み込む
// 優先順位：環境変数 > 設定ファイル > デフォルト値
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── デフォルト値 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "lesson_app")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scheduling.daily_cap", 2)
	v.SetDefault("scheduling.lesson_minutes", 50)
	v.SetDefault("scheduling.continuity_bonus", -1000)
	v.SetDefault("scheduling.second_booking_penalty", 1000)
	v.SetDefault("scheduling.reference_year", 0)
	v.SetDefault("scheduling.seed", 0)
	v.SetDefault("scheduling.calendar_timezone", "Asia/Tokyo")

	// ── 設定ファイル ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 環境変数 ──
	v.SetEnvPrefix("LESSON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		// 設定ファイルが無い場合はデフォルト値と環境変数のみで動く
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 重要な設定値を検証する
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("設定エラー: server.port は 1-65535 の範囲で指定してください")
	}
	if c.Scheduling.DailyCap <= 0 {
		return fmt.Errorf("設定エラー: scheduling.daily_cap は 1 以上を指定してください")
	}
	if c.Scheduling.LessonMinutes <= 0 {
		return fmt.Errorf("設定エラー: scheduling.lesson_minutes は 1 以上を指定してください")
	}
	if c.Scheduling.ContinuityBonus >= 0 {
		return fmt.Errorf("設定エラー: scheduling.continuity_bonus は負値を指定してください")
	}
	if c.Scheduling.SecondBookingPenalty <= 0 {
		return fmt.Errorf("設定エラー: scheduling.second_booking_penalty は正値を指定してください")
	}
	return nil
}
