//go:build !(((darwin || linux) && (amd64 || arm64)) || (windows && (amd64 || arm64)))

package sdk

func loadLibrary(string) (abi, error) {
	return nil, ErrUnsupportedPlatform
}
