package main

type versionReport struct {
	Version                  string `json:"version"`
	OCRAvailable             bool   `json:"ocr_available"`
	OCREngine                string `json:"ocr_engine"`
	OCREngineVersion         string `json:"ocr_engine_version,omitempty"`
	DocumentBackend          string `json:"document_backend"`
	DocumentBackendAvailable bool   `json:"document_backend_available"`
	DocumentBackendVersion   string `json:"document_backend_version,omitempty"`
	RenderSupported          bool   `json:"render_supported"`
	TextSupported            bool   `json:"text_supported"`
	ImagesSupported          bool   `json:"images_supported"`
}

// versionReport reads the capabilities probed at startup; nothing is re-probed.
func (a *app) versionReport() versionReport {
	primary := a.registry.Primary().Name()
	caps := a.registry.Capabilities(primary)
	return versionReport{
		Version:                  version,
		OCRAvailable:             a.ocrCaps.Available,
		OCREngine:                a.provider.Name(),
		OCREngineVersion:         a.ocrCaps.Version,
		DocumentBackend:          primary,
		DocumentBackendAvailable: caps.Available,
		DocumentBackendVersion:   caps.Version,
		RenderSupported:          caps.Render,
		TextSupported:            caps.Text,
		ImagesSupported:          caps.Images,
	}
}
