package healthrecords

type RecordType string

const (
	TypeSymptomCheck RecordType = "symptom_check"
	TypePrescription RecordType = "prescription"
	TypeCheckup      RecordType = "checkup"
	TypeEmergency    RecordType = "emergency"
)

func (t RecordType) Valid() bool {
	switch t {
	case TypeSymptomCheck, TypePrescription, TypeCheckup, TypeEmergency:
		return true
	}
	return false
}

type Source string

const (
	// SourceManual: cargado por el usuario desde POST /records.
	SourceManual Source = "manual"
	// SourceSystem: generado por otro módulo (envío de síntomas, receta).
	SourceSystem Source = "system"
)
