package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/config"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/repository"
	"github.com/booky-next/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultConfigName = "booky"
	stateDirName      = ".booky"
	stateFilename     = "state.db"
)

// errSilent 错误信息已输出，只需返回非零退出码
var errSilent = errors.New("silent")

// Options 命令行运行参数，测试可注入配置与输入输出
type Options struct {
	Config       *config.Config
	In           io.Reader
	Out          io.Writer
	Err          io.Writer
	Now          func() time.Time
	ReadPassword func(prompt string) (string, error)
}

// app 单次命令执行的依赖
type app struct {
	opts       Options
	configPath string
	debug      bool

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	styles styles

	cfg     *config.Config
	db      *gorm.DB
	store   *service.ClientStore
	client  *apiclient.Client
	session *service.SessionService
	catalog *service.CatalogService
	cart    *service.CartService
}

// Execute 入口，返回进程退出码
func Execute() int {
	if err := Run(context.Background(), os.Args[1:], Options{}); err != nil {
		return 1
	}
	return 0
}

// Run 构建命令树并执行
func Run(ctx context.Context, args []string, opts Options) error {
	a := newApp(opts)
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.opts.In)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(a.errOut, a.styles.Danger.Render("Error: "+service.UserMessage(err)))
	}
	return err
}

func newApp(opts Options) *app {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &app{
		opts:   opts,
		in:     bufio.NewReader(opts.In),
		out:    opts.Out,
		errOut: opts.Err,
		styles: newStyles(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "booky",
		Short:         "Browse the Booky catalog and borrow books from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: booky.yml in . or ./etc)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log to stderr at debug level")

	root.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.homeCommand(),
		a.booksCommand(),
		a.bookCommand(),
		a.authorsCommand(),
		a.authorCommand(),
		a.categoriesCommand(),
		a.reviewsCommand(),
		a.cartCommand(),
		a.checkoutCommand(),
		a.checkoutSuccessCommand(),
		a.profileCommand(),
		a.loansCommand(),
	)
	return root
}

// setup 加载配置、日志、本地状态库与客户端
func (a *app) setup() error {
	if a.cfg != nil {
		return nil
	}
	cfg := a.opts.Config
	if cfg == nil {
		if strings.TrimSpace(a.configPath) != "" {
			cfg = config.LoadFile(a.configPath)
		} else {
			cfg = config.LoadNamed(defaultConfigName)
		}
	}
	a.cfg = cfg
	a.initLogger()

	dsn, err := resolveStateDSN(cfg.Client.StateDSN)
	if err != nil {
		return err
	}
	db, err := models.OpenDB(cfg.Client.StateDriver, dsn, models.DBPoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, gormlogger.Silent)
	if err != nil {
		logger.Errorw("cli_state_db_open_failed", "driver", cfg.Client.StateDriver, "error", err)
		return fmt.Errorf("open local state: %w", err)
	}
	a.db = db
	if err := models.AutoMigrateClientState(db); err != nil {
		return fmt.Errorf("migrate local state: %w", err)
	}

	a.store = service.NewClientStore(repository.NewClientStateRepository(db))
	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cfg.Client.BaseURL,
		Timeout:   time.Duration(cfg.Client.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Client.UserAgent,
	}, a.store)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	a.client = client
	a.session = service.NewSessionService(a.store, client)
	a.catalog = service.NewCatalogService(client)
	a.cart = service.NewCartService(a.store)
	logger.Debugw("cli_ready", "base_url", cfg.Client.BaseURL, "state_driver", cfg.Client.StateDriver)
	return nil
}

func (a *app) initLogger() {
	if a.debug {
		logger.Init("debug", logger.Options{Console: a.errOut})
		return
	}
	opts := a.cfg.Log.ToLoggerOptions()
	if strings.TrimSpace(opts.Dir) == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.Dir = filepath.Join(home, stateDirName, "logs")
		}
	}
	logger.Init("release", opts)
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logger.Sync()
}

// resolveStateDSN 未配置时使用 ~/.booky/state.db
func resolveStateDSN(dsn string) (string, error) {
	if trimmed := strings.TrimSpace(dsn); trimmed != "" {
		return trimmed, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, stateDirName, stateFilename), nil
}

func (a *app) now() time.Time {
	return a.opts.Now()
}

// fail 输出错误并返回静默错误
func (a *app) fail(err error, hint string) error {
	fmt.Fprintln(a.errOut, a.styles.Danger.Render("Error: "+service.UserMessage(err)))
	if hint != "" {
		fmt.Fprintln(a.errOut, a.styles.Muted.Render(hint))
	}
	return errors.Join(errSilent, err)
}
