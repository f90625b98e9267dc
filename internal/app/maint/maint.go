package maint

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	collectionlogstore "github.com/dalemusser/greenlink/internal/app/store/collectionlogs"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	routestore "github.com/dalemusser/greenlink/internal/app/store/routes"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/app/system/mongocodec"
	"github.com/dalemusser/greenlink/internal/app/system/servicedate"
	"github.com/schollz/progressbar/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Tool runs maintenance tasks against one database. Reports go to Out;
// diagnostics go to Log.
type Tool struct {
	DB   *mongo.Database
	Cal  *servicedate.Calendar
	Log  *zap.Logger
	Out  io.Writer
	Rand *rand.Rand

	client     *mongo.Client
	households *householdstore.Store
	collectors *collectorstore.Store
	routes     *routestore.Store
	logs       *collectionlogstore.Store
	users      *userstore.Store
}

// New builds a Tool over an open database. Collection names must already
// be configured.
func New(db *mongo.Database, cal *servicedate.Calendar, log *zap.Logger, out io.Writer) *Tool {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Tool{
		DB:         db,
		Cal:        cal,
		Log:        log,
		Out:        out,
		Rand:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		households: householdstore.New(db),
		collectors: collectorstore.New(db),
		routes:     routestore.New(db),
		logs:       collectionlogstore.New(db),
		users:      userstore.New(db),
	}
}

// Open connects to the configured database and returns a Tool for it.
func Open(ctx context.Context, cfg Config, log *zap.Logger, out io.Writer) (*Tool, error) {
	collections.Configure(cfg.Names())

	cal, err := servicedate.Load(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(mongocodec.Registry()).
		SetServerSelectionTimeout(10 * time.Second)
	if cfg.ProjectID != "" {
		opts.SetAppName(cfg.ProjectID)
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	t := New(client.Database(cfg.MongoDatabase), cal, log, out)
	t.client = client
	return t, nil
}

// Close disconnects a Tool created by Open.
func (t *Tool) Close(ctx context.Context) error {
	if t.client == nil {
		return nil
	}
	return t.client.Disconnect(ctx)
}

func (t *Tool) printf(format string, args ...any) {
	fmt.Fprintf(t.Out, format, args...)
}

func (t *Tool) newBar(total int64, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(t.Out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(t.Out) }),
	)
}
