package test

import (
	"os"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
)

// LocalTestFixture brings the compose services (postgres, redis) up for the
// integration suite. Set SKIP_INFRASTRUCTURE=true when they are already
// running.
type LocalTestFixture struct {
	dockerComposePath string
	compose           testcontainers.DockerCompose
}

func NewLocalTestFixture(dockerComposePath string) (LocalTestFixture, error) {
	compose := testcontainers.NewLocalDockerCompose(
		[]string{dockerComposePath},
		uuid.New().String(),
	)

	f := LocalTestFixture{
		dockerComposePath: dockerComposePath,
		compose:           compose.WithCommand([]string{"up", "-d"}),
	}

	return f, nil
}

func (f *LocalTestFixture) Start() error {
	if skip := os.Getenv("SKIP_INFRASTRUCTURE"); skip == "true" {
		return nil
	}

	execErr := f.compose.Invoke()
	return execErr.Error
}

func (f *LocalTestFixture) Stop() error {
	if skip := os.Getenv("SKIP_INFRASTRUCTURE"); skip == "true" {
		return nil
	}

	execErr := f.compose.Down()
	return execErr.Error
}
