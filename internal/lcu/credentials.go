package lcu

import (
	"fmt"
	"strconv"
	"strings"
)

type Credentials struct {
	InstallDirectory string
	Port             int
	Token            string
}

// ParseCommandLine reads the --key=value arguments the League client is started with.
func ParseCommandLine(args []string) (Credentials, error) {
	values := make(map[string]string)
	for _, arg := range args {
		arg = strings.Trim(arg, `"`)
		if !strings.HasPrefix(arg, "--") || !strings.Contains(arg, "=") {
			continue
		}
		key, value, _ := strings.Cut(arg[2:], "=")
		values[key] = strings.Trim(value, `"`)
	}

	port, err := strconv.Atoi(values["app-port"])
	if err != nil || port <= 0 {
		return Credentials{}, fmt.Errorf("invalid or missing app-port argument %q", values["app-port"])
	}
	token := values["remoting-auth-token"]
	if token == "" {
		return Credentials{}, fmt.Errorf("missing remoting-auth-token argument")
	}

	return Credentials{
		InstallDirectory: values["install-directory"],
		Port:             port,
		Token:            token,
	}, nil
}
