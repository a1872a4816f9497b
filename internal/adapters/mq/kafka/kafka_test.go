package kafka

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

func selfSigned(t *testing.T) (certPEM, keyPEM string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "playoff-processor"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	return certPEM, keyPEM
}

func TestConfigTLS(t *testing.T) {
	cert, key := selfSigned(t)

	Convey("Given kafka client settings", t, func() {
		Convey("When no certificate is configured", func() {
			cfg, err := Config{}.TLS()

			Convey("Then plaintext is used", func() {
				So(err, ShouldBeNil)
				So(cfg, ShouldBeNil)
			})
		})

		Convey("When a certificate and key are configured", func() {
			cfg, err := Config{ClientCert: cert, ClientKey: key}.TLS()

			Convey("Then the pair is loaded", func() {
				So(err, ShouldBeNil)
				So(cfg.Certificates, ShouldHaveLength, 1)
			})
		})

		Convey("When only the certificate is configured", func() {
			_, err := Config{ClientCert: cert}.TLS()

			Convey("Then the configuration is rejected", func() {
				So(errors.Is(err, ErrTLSConfig), ShouldBeTrue)
			})
		})

		Convey("When the key does not parse", func() {
			_, err := Config{ClientCert: cert, ClientKey: "not a key"}.TLS()

			Convey("Then the configuration is rejected", func() {
				So(errors.Is(err, ErrTLSConfig), ShouldBeTrue)
			})
		})
	})
}

func TestConstructors(t *testing.T) {
	_ = logger.Init()

	Convey("Given no brokers", t, func() {
		_, srcErr := NewSource(Config{Topic: "t"}, logger.Get())
		_, pubErr := NewPublisher(Config{Topic: "t"})

		So(errors.Is(srcErr, ErrNoBrokers), ShouldBeTrue)
		So(errors.Is(pubErr, ErrNoBrokers), ShouldBeTrue)
	})

	Convey("Given a broken certificate", t, func() {
		_, err := NewSource(Config{Brokers: []string{"localhost:9092"}, ClientCert: "x", ClientKey: "y"}, logger.Get())

		So(errors.Is(err, ErrTLSConfig), ShouldBeTrue)
	})

	Convey("Given valid settings", t, func() {
		cfg := Config{Brokers: []string{"localhost:9092"}, Topic: "notification.autopilot.events"}
		src, err := NewSource(cfg, logger.Get())
		So(err, ShouldBeNil)
		pub, err := NewPublisher(cfg)
		So(err, ShouldBeNil)

		Convey("Then both connect lazily and close cleanly", func() {
			So(src.Close(), ShouldBeNil)
			So(pub.Close(), ShouldBeNil)
		})
	})
}

func TestMessageConversion(t *testing.T) {
	Convey("Given a fetched kafka message", t, func() {
		m := kafkago.Message{Topic: "notification.autopilot.events", Partition: 3, Offset: 42, Value: []byte(`{"topic":"x"}`)}

		msg := toMessage(m)

		Convey("Then its coordinates survive the commit conversion", func() {
			So(msg.Partition, ShouldEqual, 3)
			So(msg.Offset, ShouldEqual, 42)
			So(string(msg.Value), ShouldEqual, `{"topic":"x"}`)

			back := fromMessage(msg)
			So(back.Topic, ShouldEqual, m.Topic)
			So(back.Partition, ShouldEqual, m.Partition)
			So(back.Offset, ShouldEqual, m.Offset)
		})
	})
}
