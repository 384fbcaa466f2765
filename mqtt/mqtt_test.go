package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-market-backend/models"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func TestPublisher_Topics(t *testing.T) {
	p := NewPublisher(&fakeClient{}, "market", nil)
	defer p.Close()
	assert.Equal(t, "market/downloads", p.Topic("downloads"))

	bare := NewPublisher(&fakeClient{}, "", nil)
	defer bare.Close()
	assert.Equal(t, "downloads", bare.Topic("downloads"))
}

func TestPublisher_PublishesInOrder(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "market", nil)

	now := time.Now().UTC()
	p.PublishDownload(&models.DownloadEvent{ID: "d1", UserID: "u1", ProductID: "p1", FileName: "kit.zip", DownloadedAt: now})
	p.PublishEntitlement(&models.Entitlement{ID: "e1", UserID: "u1", ProductID: "p1", GrantedAt: now, GrantedBy: "admin"})
	p.Close()

	require.Len(t, client.msgs, 2)
	assert.Equal(t, "market/downloads", client.msgs[0].topic)
	assert.Equal(t, byte(1), client.msgs[0].qos)
	assert.Equal(t, "market/entitlements", client.msgs[1].topic)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(client.msgs[0].payload, &ev))
	assert.Equal(t, EventDownload, ev["type"])
	data := ev["data"].(map[string]interface{})
	assert.Equal(t, "kit.zip", data["fileName"])
}

func TestPublisher_ErrorsDoNotStopQueue(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := NewPublisher(client, "market", nil)

	p.PublishDownload(&models.DownloadEvent{ID: "d1"})
	p.PublishDownload(&models.DownloadEvent{ID: "d2"})
	p.Close()

	assert.Len(t, client.msgs, 2)
}

func TestPublisher_DropsAfterClose(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "market", nil)
	p.Close()
	p.Close()

	p.PublishDownload(&models.DownloadEvent{ID: "late"})
	assert.Empty(t, client.msgs)
}
