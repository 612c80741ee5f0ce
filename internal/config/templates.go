package config

import (
	"fmt"
	"os"
)

func Template() string {
	return teleinfoTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(teleinfoTemplate), 0o600)
}

const teleinfoTemplate = `log_level = "info"
log_file = "/var/log/teleinfo/releve.log"
metrics_addr = "127.0.0.1:9108"
cors_origins = []

[serial]
device = "/dev/ttyS0"
baud = 1200
data_bits = 7
read_timeout = "1s"

[influx]
addr = "http://localhost:8086"
username = ""
password = ""
database = "teleinfo"
timeout = "10s"

[sink]
host = "raspberry"
region = "linky"
retry_interval = "5s"
`
