package catalog_test

import (
	"strconv"
	"strings"

	"github.com/okian/completeness/internal/adapters/catalog"
)

func stellarHeader() []string {
	h := []string{"kepid", "teff", "radius", "mass", "dataspan", "dutycycle"}
	h = append(h, catalog.CDPPColumns()...)
	return append(h, catalog.MESThresholdColumns()...)
}

func stellarRow(id, teff, radius, mass, cdpp string) []string {
	row := []string{id, teff, radius, mass, "1400.5", "0.88"}
	for range catalog.Durations {
		row = append(row, cdpp)
	}
	for range catalog.Durations {
		row = append(row, "7.1")
	}
	return row
}

func stellarTable() catalog.Table {
	return catalog.Table{
		Name:   catalog.StellarTable,
		Header: stellarHeader(),
		Records: [][]string{
			stellarRow("10", "5700", "1.0", "1.0", "80"),
			stellarRow("20", "4800", "0.8", "", "120"),
			stellarRow("x", "5700", "1.0", "1.0", "80"),
			stellarRow("30", "5200", "-1", "1.0", "80"),
		},
	}
}

func koiTable() catalog.Table {
	return catalog.Table{
		Name: catalog.CandidateTable,
		Header: []string{
			"kepid", "kepoi_name", "koi_pdisposition", "koi_period", "koi_period_err1",
			"koi_period_err2", "koi_prad", "koi_prad_err1", "koi_prad_err2",
		},
		Records: [][]string{
			{"10", "K00010.01", "CANDIDATE", "120.5", "0.01", "-0.01", "1.9", "0.2", "-0.1"},
			{"20", "K00020.01", "FALSE POSITIVE", "60", "", "", "", "", ""},
		},
	}
}

func csvOf(t catalog.Table) string {
	var b strings.Builder
	b.WriteString("# comment line\n")
	b.WriteString(strings.Join(t.Header, ",") + "\n")
	for _, r := range t.Records {
		b.WriteString(strings.Join(r, ",") + "\n")
	}
	return b.String()
}

func tableNamed(name string, rows int) catalog.Table {
	t := catalog.Table{Name: name, Header: []string{"kepid", "value"}}
	for i := 0; i < rows; i++ {
		t.Records = append(t.Records, []string{strconv.Itoa(i), strconv.Itoa(i * i)})
	}
	return t
}
