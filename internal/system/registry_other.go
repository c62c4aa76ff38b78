//go:build !windows

package system

func readRegistryString(string, string) (string, error) {
	return "", errUnsupportedPlatform
}
