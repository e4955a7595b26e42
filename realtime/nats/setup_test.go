// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package nats_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/MainfluxLabs/storefront/logger"
	broker "github.com/nats-io/nats.go"
	dockertest "github.com/ory/dockertest/v3"
)

var (
	natsURL  string
	natsConn *broker.Conn
	testLog  = logger.NewMock()
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		testLog.Error(fmt.Sprintf("Could not connect to docker: %s", err))
		os.Exit(m.Run())
	}

	container, err := pool.Run("nats", "2.9.3-alpine", []string{})
	if err != nil {
		testLog.Error(fmt.Sprintf("Could not start container: %s", err))
		os.Exit(m.Run())
	}

	url := fmt.Sprintf("nats://localhost:%s", container.GetPort("4222/tcp"))
	if err := pool.Retry(func() error {
		natsConn, err = broker.Connect(url)
		return err
	}); err != nil {
		testLog.Error(fmt.Sprintf("Could not connect to docker: %s", err))
		natsConn = nil
	} else {
		natsURL = url
	}

	code := m.Run()

	if natsConn != nil {
		natsConn.Close()
	}
	if err := pool.Purge(container); err != nil {
		testLog.Error(fmt.Sprintf("Could not purge container: %s", err))
	}

	os.Exit(code)
}
