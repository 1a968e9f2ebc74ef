package pdfinspect

import "testing"

func TestClassify_Extractable(t *testing.T) {
	got := classify("Microsoft Word", "Microsoft Word", 5000)
	if got != Extractable {
		t.Errorf("classify() = %q, want %q", got, Extractable)
	}
}

func TestClassify_NoText(t *testing.T) {
	got := classify("Adobe Acrobat", "Adobe Acrobat", 10)
	if got != NoText {
		t.Errorf("classify() = %q, want %q", got, NoText)
	}
}

func TestClassify_ScannedDevice(t *testing.T) {
	got := classify("Xerox WorkCentre 7835", "", 80)
	if got != ScannedDevice {
		t.Errorf("classify() = %q, want %q", got, ScannedDevice)
	}
}

func TestClassify_DeviceSignatureButEnoughText(t *testing.T) {
	got := classify("Ricoh Aficio MP C4502", "", 5000)
	if got != Extractable {
		t.Errorf("classify() = %q, want %q when text volume is high despite device signature", got, Extractable)
	}
}

func TestHasScanningDeviceSignature(t *testing.T) {
	cases := []struct {
		producer, creator string
		want              bool
	}{
		{"HP Digital Sending Device", "", true},
		{"", "Canon MF toolbox", true},
		{"Epson Scan", "", true},
		{"Microsoft: Print To PDF", "Word", false},
		{"LibreOffice", "Writer", false},
	}
	for _, c := range cases {
		if got := hasScanningDeviceSignature(c.producer, c.creator); got != c.want {
			t.Errorf("hasScanningDeviceSignature(%q, %q) = %v, want %v", c.producer, c.creator, got, c.want)
		}
	}
}
