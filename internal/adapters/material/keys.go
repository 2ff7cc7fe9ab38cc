package material

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/youmark/pkcs8"
)

var (
	ErrNoPrivateKey       = errors.New("no private key PEM block")
	ErrKeyPasswordMissing = errors.New("private key is encrypted and no password was given")
)

func isPrivateKeyBlockType(blockType string) bool {
	switch blockType {
	case "RSA PRIVATE KEY", "EC PRIVATE KEY", "PRIVATE KEY", "ENCRYPTED PRIVATE KEY":
		return true
	default:
		return false
	}
}

// firstKeyBlock returns the first private key block of pemData.
func firstKeyBlock(pemData []byte) (*pem.Block, error) {
	for {
		block, rest := pem.Decode(pemData)
		if block == nil {
			return nil, ErrNoPrivateKey
		}
		pemData = rest
		if isPrivateKeyBlockType(block.Type) {
			return block, nil
		}
	}
}

func parsePrivateKeyBlock(block *pem.Block, password string) (crypto.Signer, error) {
	if _, legacy := block.Headers["DEK-Info"]; legacy {
		return nil, errors.New("legacy PEM encryption is not supported, convert the key to PKCS#8")
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case "ENCRYPTED PRIVATE KEY":
		if password == "" {
			return nil, ErrKeyPasswordMissing
		}
		key, _, err = pkcs8.ParsePrivateKey(block.Bytes, []byte(password))
		if err != nil {
			return nil, fmt.Errorf("decrypt PKCS#8 key: %w", err)
		}
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", block.Type, err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	return signer, nil
}

// encodePKCS8 renders key as an unencrypted "PRIVATE KEY" PEM block.
func encodePKCS8(key any) (string, error) {
	der, err := pkcs8.MarshalPrivateKey(key, nil, nil)
	if err != nil {
		return "", fmt.Errorf("marshal PKCS#8 key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

func encodeCertificates(certs ...*x509.Certificate) string {
	var out []byte
	for _, cert := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})...)
	}
	return string(out)
}
