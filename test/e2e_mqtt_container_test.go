package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/infra/notify"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
log_type information
connection_messages true
log_timestamp true
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", broker, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

func TestNotificationDeliveryWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	received := make(chan []byte, 1)
	subOpts := paho.NewClientOptions().AddBroker(broker).SetClientID("driver-app-sim")
	subCli := paho.NewClient(subOpts)
	if token := subCli.Connect(); token.Wait() && token.Error() != nil {
		t.Skipf("subscriber connect: %v", token.Error())
	}
	defer subCli.Disconnect(100)
	if token := subCli.Subscribe("fleetopt/notifications/driver_app", 1, func(_ paho.Client, m paho.Message) {
		select {
		case received <- m.Payload():
		default:
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	sink, err := notify.NewMQTTSink(notify.MQTTConfig{
		Broker:   broker,
		ClientID: "fleetopt-test",
		QoS:      1,
	})
	if err != nil {
		t.Fatalf("mqtt sink: %v", err)
	}
	defer sink.Close()

	meta := map[string]string{"driver_id": "D1", "outcome": "auto_approved"}
	if err := sink.Notify(ctx, fleet.ChannelDriverApp, "2 loads assigned, revenue $4200", meta); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case payload := <-received:
		var msg struct {
			ID      string            `json:"id"`
			Channel string            `json:"channel"`
			Message string            `json:"message"`
			Meta    map[string]string `json:"meta"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Channel != "driver_app" {
			t.Errorf("channel = %q, want driver_app", msg.Channel)
		}
		if msg.Message != "2 loads assigned, revenue $4200" {
			t.Errorf("unexpected message: %q", msg.Message)
		}
		if msg.Meta["driver_id"] != "D1" {
			t.Errorf("meta missing driver_id: %v", msg.Meta)
		}
		if msg.ID == "" {
			t.Error("message id missing")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered within timeout")
	}
}
