package httpapi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alshuail-fund/internal/compliance"
	"alshuail-fund/internal/service"
)

func TestGenerateMembersExport(t *testing.T) {
	members := []service.EnrichedMember{
		{
			MemberID:         "m1",
			MembershipNumber: "SH-M1ABC",
			FullName:         "محمد العيد",
			TribalSection:    "العيد",
			Compliance: compliance.Classification{
				Balance:   1250,
				Category:  compliance.CategoryNonCompliant,
				Shortfall: 1750,
			},
		},
		{
			MemberID:         "m2",
			MembershipNumber: "SH-M2DEF",
			FullName:         "سعد الرشيد",
			TribalSection:    "الرشيد",
			Compliance: compliance.Classification{
				Balance:  5000,
				Category: compliance.CategoryExcellent,
			},
		},
	}
	stats := service.Statistics{
		Total:          2,
		TotalBalance:   6250,
		TotalShortfall: 1750,
		ComplianceRate: 50,
	}

	payload, err := GenerateMembersExport(members, stats)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("الأعضاء")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, MembersExportHeader, rows[0][:len(MembersExportHeader)])
	assert.Equal(t, "SH-M1ABC", rows[1][0])
	assert.Equal(t, "محمد العيد", rows[1][1])
	assert.Equal(t, "غير ملتزم", rows[1][7])

	// summary row sits below a blank gap
	last := rows[len(rows)-1]
	assert.Equal(t, "الإجمالي", last[0])
	assert.Contains(t, last[1], "2")
}
