package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestHeader = "category,type,date,time,carrier_code,carrier_name,doc_code,flight_number\n"

func TestParseManifest(t *testing.T) {
	input := manifestHeader +
		"5.3,INT,10/03/2025,08:30,AM,Aeromexico,AMX,404\n" +
		"5.4,NAC,10/03/2025,07:15,VB,Viva,VIV,1221\n" +
		"5.3,INT,10/03/2025,06:00,Y4,Volaris,VOI,503\n"

	records, err := ParseManifest(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Sorted by (date, time, flight number).
	assert.Equal(t, "503", records[0].FlightNumber)
	assert.Equal(t, "1221", records[1].FlightNumber)
	assert.Equal(t, "404", records[2].FlightNumber)
}

func TestParseManifest_DedupsOnNaturalKey(t *testing.T) {
	input := manifestHeader +
		"5.3,INT,10/03/2025,08:30,AM,Aeromexico,AMX,404\n" +
		"5.3,INT,10/03/2025,08:30,AM,Aeromexico Dup,AMX,404\n"

	records, err := ParseManifest(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Aeromexico", records[0].CarrierName, "first occurrence wins")
}

func TestParseManifest_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing category":      manifestHeader + ",INT,10/03/2025,08:30,AM,Aeromexico,AMX,404\n",
		"missing flight number": manifestHeader + "5.3,INT,10/03/2025,08:30,AM,Aeromexico,AMX,\n",
		"invalid date":          manifestHeader + "5.3,INT,31/02/2025,08:30,AM,Aeromexico,AMX,404\n",
		"blank date":            manifestHeader + "5.3,INT,,08:30,AM,Aeromexico,AMX,404\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestParseManifest_RejectsWrongHeader(t *testing.T) {
	input := "a,b,c\n5.3,INT,x\n"
	_, err := ParseManifest(strings.NewReader(input))
	assert.Error(t, err)
}

func TestRecordKey(t *testing.T) {
	a := Record{Category: "5.3", Date: "10/03/2025", Time: "08:30", DocCode: "AMX", FlightNumber: "404"}
	b := Record{Category: "5.3", Date: "10/03/2025", Time: "08:30", DocCode: "amx", FlightNumber: " 404 "}
	assert.Equal(t, a.Key(), b.Key())
}
