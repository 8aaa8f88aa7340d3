package export

// DefaultHospitalName heads every rendered document unless overridden.
const DefaultHospitalName = "Hospital Management System"

// Exporter renders Documents. It holds no per-request state and is safe for
// concurrent use.
type Exporter struct {
	host     string
	hospital string
}

// NewExporter returns an exporter whose share links point at host.
func NewExporter(host, hospital string) *Exporter {
	if hospital == "" {
		hospital = DefaultHospitalName
	}
	return &Exporter{host: host, hospital: hospital}
}
