package ds

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DynamoTestStore starts DynamoDB local in a container and returns a store
// over a fresh table. The returned function terminates the container.
func DynamoTestStore(ctx context.Context) (*DynamoStateStore, func(), error) {
	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "amazon/dynamodb-local",
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	terminate := func() {
		if err := db.Terminate(ctx); err != nil {
			panic(err)
		}
	}

	host, err := db.Host(ctx)
	if err != nil {
		terminate()
		return nil, nil, err
	}

	port, err := db.MappedPort(ctx, "8000")
	if err != nil {
		terminate()
		return nil, nil, err
	}

	cfg, err := staticConfig(ctx, fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		terminate()
		return nil, nil, err
	}

	client := Client(cfg)
	table := StateTableName("test-state")
	if err := createTable(ctx, client, table); err != nil {
		terminate()
		return nil, nil, err
	}

	return NewStateStore(client, table), terminate, nil
}
