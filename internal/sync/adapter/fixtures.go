package adapter

import _ "embed"

// Bundled payloads for sources without open machine access. The EU
// consolidated list requires authorized access to the Financial
// Sanctions Database; Interpol Red Notice data requires a formal
// agreement with Interpol.
var (
	//go:embed fixtures/eu_consolidated.xml
	EUFixture []byte

	//go:embed fixtures/interpol_red_notices.json
	InterpolFixture []byte
)
