package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dineease/restaurantservice/internal"
	"github.com/dineease/restaurantservice/pkg/cache"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {

			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := internal.LoadConfig(ctx)
	if err != nil {
		log.Fatal(err)
	}

	mongoClient, err := initMongoClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer mongoClient.Disconnect(context.Background())

	redisClient, err := initRedisClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	amqpConn := initAMQPConn(cfg)
	defer amqpConn.Close()

	internal.SetupValidator()

	objects, err := internal.NewGridFSStorage(mongoClient)
	if err != nil {
		log.Fatal(err)
	}

	storage := internal.NewRestaurantStorage(mongoClient)
	rabbitmq := internal.NewRabbitMQ(amqpConn)

	restaurants := internal.NewRestaurantService(
		storage,
		internal.NewModificationStorage(mongoClient),
		internal.NewModerationRecorder(mongoClient),
		objects,
		rabbitmq,
	)

	verification := internal.NewVerificationService(
		storage,
		cache.New(redisClient),
		internal.NewRandomCodeGenerator(),
	)

	run(ctx, restaurants, verification)
}

// run keeps the process alive until asked to stop. The RPC surface is
// deployed separately and mounts on the two services.
func run(ctx context.Context, restaurants *internal.RestaurantService,
	verification *internal.VerificationService) {

	pending, err := restaurants.Pending(ctx)
	if err != nil {
		log.Fatal(err)
	}
	slog.Info("restaurant service is running", "pendingListings", len(pending))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("restaurant service shutting down")
}

func initMongoClient(cfg *internal.Config) (*mongo.Client, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI()))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	// Name, tax id and slug are unique among live listings only, so a
	// soft-deleted record never blocks a new submission.
	nonDeleted := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.D{{Key: "isDeleted", Value: false}})

	restaurants := client.Database("db", nil).Collection("restaurants")
	_, err = restaurants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: nonDeleted},
		{Keys: bson.D{{Key: "taxId", Value: 1}}, Options: nonDeleted},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: nonDeleted},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	requests := client.Database("db", nil).Collection("modificationRequests")
	_, err = requests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "restaurantId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

func initRedisClient(cfg *internal.Config) (*redis.Client, error) {

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func initAMQPConn(cfg *internal.Config) *amqp.Connection {

	maxRetries := 5
	var conn *amqp.Connection
	var err error

	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp.Dial(cfg.AMQPURI())
		if err == nil {
			slog.Info("Successfully connected to AMQP Server")
			return conn
		}
		if i == maxRetries {
			log.Fatalf("Could not establish AMQP connection after %d attempts: %v", maxRetries, err)
		}
		time.Sleep(5 * time.Second)
	}

	log.Fatalf("Unexpected")
	return nil
}
