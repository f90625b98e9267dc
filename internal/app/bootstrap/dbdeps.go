// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/greenlink/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Tasks runs the background jobs. Startup starts it; Shutdown stops it.
	Tasks *tasks.Runner
}
