package ranking

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderReport(report Report) (string, error)
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

func (r *CsvRendererImpl) RenderReport(report Report) (string, error) {
	data := make([][]string, 0, len(report.Rows)+1)
	data = append(data, []string{
		"Rank", "Champion", "Open now", "Overdue now", "Closed (window)",
		"On-time % (window)", "Median TTC (days)", "Impact PLN (window)",
		"Impact EUR (window)", "Delivery Score", "Impact Score", "Total Score",
		"Missing manual", "Missing scope",
	})
	for _, row := range report.Rows {
		data = append(data, []string{
			strconv.Itoa(row.Rank),
			row.ChampionName,
			strconv.Itoa(row.OpenNow),
			strconv.Itoa(row.OverdueNow),
			strconv.Itoa(row.ClosedInWindow),
			optionalPercent(row.OnTimeRate),
			optionalFloat(row.MedianTTCDays),
			formatFloat(row.ImpactPLN, 2),
			formatFloat(row.ImpactEUR, 2),
			formatFloat(row.DeliveryScore, 1),
			formatFloat(row.ImpactScore, 1),
			formatFloat(row.TotalScore, 1),
			strconv.Itoa(row.MissingManual),
			strconv.Itoa(row.MissingScope),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func optionalPercent(rate *float64) string {
	if rate == nil {
		return ""
	}
	return formatFloat(*rate*100, 1)
}

func optionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value, 1)
}

func formatFloat(value float64, precision int) string {
	return strconv.FormatFloat(value, 'f', precision, 64)
}
