// Package main writes a self-signed server certificate and key for running
// the CMS with -tls-cert and -tls-key.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/gophcms/internal/certgen"
)

func main() {
	var (
		dir   string
		hosts string
		days  int
	)
	flag.StringVar(&dir, "dir", "certs", "output directory")
	flag.StringVar(&hosts, "hosts", "localhost,127.0.0.1", "comma-separated hosts and IPs")
	flag.IntVar(&days, "days", 365, "validity in days")
	flag.Parse()

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(splitHosts(hosts), time.Duration(days)*24*time.Hour)
	if err != nil {
		log.Fatal(err)
	}

	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	if err := certgen.WriteFiles(certPath, keyPath, certPEM, keyPEM); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Certificate written to %s and %s\n", certPath, keyPath)
}

// splitHosts parses a comma-separated host list, dropping blanks.
func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
