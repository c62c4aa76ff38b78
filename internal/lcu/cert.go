package lcu

import (
	"crypto/tls"
	"crypto/x509"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed riotgames.pem
var riotRootCertificate []byte

// RiotRootCAs returns a pool holding only the Riot Games root certificate, both local APIs are signed by it.
func RiotRootCAs() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(riotRootCertificate)

	return pool
}

// TLSConfig pins the peer chain to roots. The local APIs serve certificates without a usable host name,
// so the chain is verified by hand and the name check is skipped.
func TLSConfig(roots *x509.CertPool) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return errors.New("no peer certificate presented")
			}
			certs := make([]*x509.Certificate, 0, len(rawCerts))
			for _, raw := range rawCerts {
				c, err := x509.ParseCertificate(raw)
				if err != nil {
					return fmt.Errorf("parsing peer certificate: %w", err)
				}
				certs = append(certs, c)
			}

			intermediates := x509.NewCertPool()
			for _, c := range certs[1:] {
				intermediates.AddCert(c)
			}
			_, err := certs[0].Verify(x509.VerifyOptions{
				Roots:         roots,
				Intermediates: intermediates,
			})

			return err
		},
	}
}
