package attachment

import "errors"

var ErrReadManifestFail = errors.New("failed to read attachment manifest")
var ErrManifestParsingFail = errors.New("failed to parse attachment manifest")
