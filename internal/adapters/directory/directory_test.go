package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

func TestDefault_LoadsEmbeddedDirectory(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"mumbai", "delhi", "bangalore", "chennai", "kolkata", "hyderabad", "pune"}, d.Regions())
	assert.Equal(t, 28, d.Count())
	assert.True(t, d.HasRegion(" Mumbai"))
	assert.False(t, d.HasRegion("goa"))

	want := entities.Facility{
		Name:             "Tata Memorial Hospital",
		Region:           "mumbai",
		Location:         geo.Point{Latitude: 19.0110, Longitude: 72.8569},
		EmergencyContact: "022-2417-7000",
		SecondaryContact: "022-2417-7100",
	}
	if diff := cmp.Diff(want, d.InRegion("mumbai")[0]); diff != "" {
		t.Errorf("first mumbai facility mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	facilities := d.InRegion("delhi")
	facilities[0].Name = "mutated"
	all := d.All()
	all[0].Name = "mutated"

	assert.Equal(t, "AIIMS Delhi", d.InRegion("delhi")[0].Name)
	assert.Equal(t, "Tata Memorial Hospital", d.All()[0].Name)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	doc := `regions:
  Goa:
    - name: Goa Medical College
      lat: 15.4589
      lng: 73.8370
      emergency: "0832-249-5000"
      blood_bank: "0832-249-5100"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"goa"}, d.Regions())
	assert.Equal(t, "goa", d.All()[0].Region)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 28, d.Count())
}

func TestDirectory_Version(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Load("")
	require.NoError(t, err)
	assert.Len(t, a.Version(), 12)
	assert.Equal(t, a.Version(), b.Version())

	goa := entities.Facility{
		Name:             "Goa Medical College",
		Location:         geo.Point{Latitude: 15.4589, Longitude: 73.8370},
		EmergencyContact: "0832-249-5000",
		SecondaryContact: "0832-249-5100",
	}
	small, err := New([]string{"goa"}, map[string][]entities.Facility{"goa": {goa}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), small.Version())

	goa.SecondaryContact = "0832-249-5199"
	changed, err := New([]string{"goa"}, map[string][]entities.Facility{"goa": {goa}})
	require.NoError(t, err)
	assert.NotEqual(t, small.Version(), changed.Version(), "a contact change must change the version")
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{
			name: "no regions",
			doc:  "regions: []\n",
			msg:  "regions must be a mapping",
		},
		{
			name: "empty region",
			doc:  "regions:\n  goa: []\n",
			msg:  "has no facilities",
		},
		{
			name: "duplicate facility",
			doc: `regions:
  goa:
    - {name: GMC, lat: 15.4, lng: 73.8, emergency: "1", blood_bank: "2"}
    - {name: gmc, lat: 15.4, lng: 73.8, emergency: "1", blood_bank: "2"}
`,
			msg: "duplicate facility",
		},
		{
			name: "duplicate region after normalization",
			doc: `regions:
  goa:
    - {name: GMC, lat: 15.4, lng: 73.8, emergency: "1", blood_bank: "2"}
  GOA:
    - {name: Other, lat: 15.4, lng: 73.8, emergency: "1", blood_bank: "2"}
`,
			msg: "duplicate region",
		},
		{
			name: "latitude out of range",
			doc: `regions:
  goa:
    - {name: GMC, lat: 95, lng: 73.8, emergency: "1", blood_bank: "2"}
`,
			msg: "latitude",
		},
		{
			name: "missing contact",
			doc: `regions:
  goa:
    - {name: GMC, lat: 15.4, lng: 73.8, emergency: "1"}
`,
			msg: "both contact numbers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNew_NormalizesRegion(t *testing.T) {
	d, err := New([]string{"Pune"}, map[string][]entities.Facility{
		"Pune": {{Name: "Ruby Hall Clinic", Location: geo.Point{Latitude: 18.5, Longitude: 73.8}, EmergencyContact: "1", SecondaryContact: "2"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pune"}, d.Regions())
	assert.Equal(t, "pune", d.InRegion("pune")[0].Region)
}
