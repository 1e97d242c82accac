package aws

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/endpoints"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/costexploreriface"
)

// A CostRecord is the blended cost of one service on one day.
type CostRecord struct {
	Date    string  `json:"date"` // 2006-01-02
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
	Unit    string  `json:"unit"`
}

// CostService retrieves cost and usage data.
type CostService struct {
	Client costexploreriface.ClientAPI
}

// NewCost returns a cost service using the given configuration. Cost
// Explorer is only served from us-east-1, the configured region is
// overridden.
func NewCost(cfg aws.Config) *CostService {
	cfg.Region = endpoints.UsEast1RegionID
	return &CostService{Client: costexplorer.New(cfg)}
}

// DailyByService returns the blended cost per service per day for the given
// number of days up to today.
func (s *CostService) DailyByService(ctx context.Context, days int) ([]CostRecord, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &costexplorer.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: costexplorer.GranularityDaily,
		Metrics:     []string{"BlendedCost"},
		GroupBy: []costexplorer.GroupDefinition{
			{
				Type: costexplorer.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	}

	var ret []CostRecord
	for {
		var resp *costexplorer.GetCostAndUsageResponse
		err := retry(ctx, func() error {
			req := s.Client.GetCostAndUsageRequest(input)
			var err error
			resp, err = req.Send(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, rbt := range resp.ResultsByTime {
			date := ""
			if rbt.TimePeriod != nil {
				date = aws.StringValue(rbt.TimePeriod.Start)
			}
			for _, group := range rbt.Groups {
				rec := CostRecord{Date: date}
				if len(group.Keys) > 0 {
					rec.Service = group.Keys[0]
				}
				if mv, ok := group.Metrics["BlendedCost"]; ok {
					if amount, err := strconv.ParseFloat(aws.StringValue(mv.Amount), 64); err == nil {
						rec.Amount = amount
					}
					rec.Unit = aws.StringValue(mv.Unit)
				}
				ret = append(ret, rec)
			}
		}
		if resp.NextPageToken == nil {
			return ret, nil
		}
		input.NextPageToken = resp.NextPageToken
	}
}
