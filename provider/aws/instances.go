package aws

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/ec2iface"
)

// An Instance is one EC2 instance in a customer account.
type Instance struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	State string `json:"state"`

	// Name is the value of the Name tag, empty when not tagged.
	Name string `json:"name,omitempty"`

	LaunchedAt time.Time `json:"launched_at"`

	// StoppedSince is set for stopped instances when the stop time could be
	// determined from the state transition reason.
	StoppedSince *time.Time `json:"stopped_since,omitempty"`
}

// Running returns true if the instance is currently running.
func (i Instance) Running() bool {
	return i.State == string(ec2.InstanceStateNameRunning)
}

// EC2Service retrieves instance inventory.
type EC2Service struct {
	Client ec2iface.ClientAPI
}

// NewEC2 returns an EC2 service using the given configuration.
func NewEC2(cfg aws.Config) *EC2Service {
	return &EC2Service{Client: ec2.New(cfg)}
}

// Instances lists all instances in the account's region, following
// pagination.
func (s *EC2Service) Instances(ctx context.Context) ([]Instance, error) {
	var ret []Instance
	input := &ec2.DescribeInstancesInput{}
	for {
		var resp *ec2.DescribeInstancesResponse
		err := retry(ctx, func() error {
			req := s.Client.DescribeInstancesRequest(input)
			var err error
			resp, err = req.Send(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, res := range resp.Reservations {
			for _, inst := range res.Instances {
				ret = append(ret, newInstance(inst))
			}
		}
		if resp.NextToken == nil {
			return ret, nil
		}
		input.NextToken = resp.NextToken
	}
}

func newInstance(inst ec2.Instance) Instance {
	i := Instance{
		ID:   aws.StringValue(inst.InstanceId),
		Type: string(inst.InstanceType),
	}
	if inst.State != nil {
		i.State = string(inst.State.Name)
	}
	if inst.LaunchTime != nil {
		i.LaunchedAt = *inst.LaunchTime
	}
	for _, tag := range inst.Tags {
		if aws.StringValue(tag.Key) == "Name" {
			i.Name = aws.StringValue(tag.Value)
		}
	}
	if i.State == string(ec2.InstanceStateNameStopped) {
		if t, ok := transitionTime(aws.StringValue(inst.StateTransitionReason)); ok {
			i.StoppedSince = &t
		}
	}
	return i
}

// transitionTime extracts the timestamp from a state transition reason such
// as "User initiated (2019-07-20 08:30:45 GMT)".
func transitionTime(reason string) (time.Time, bool) {
	start := strings.LastIndex(reason, "(")
	end := strings.LastIndex(reason, ")")
	if start < 0 || end < start {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15:04:05 MST", reason[start+1:end])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// A DurationBucket groups stopped instances by how long they have been
// stopped.
type DurationBucket struct {
	Label     string   `json:"label"`
	Instances []string `json:"instances"`
}

// StoppedDurations buckets stopped instances by stop duration relative to
// now. Stopped instances without a known stop time are not counted.
func StoppedDurations(instances []Instance, now time.Time) []DurationBucket {
	buckets := []DurationBucket{
		{Label: "<7d", Instances: []string{}},
		{Label: "7-30d", Instances: []string{}},
		{Label: "30-90d", Instances: []string{}},
		{Label: ">90d", Instances: []string{}},
	}
	for _, inst := range instances {
		if inst.StoppedSince == nil {
			continue
		}
		d := now.Sub(*inst.StoppedSince)
		switch {
		case d < 7*24*time.Hour:
			buckets[0].Instances = append(buckets[0].Instances, inst.ID)
		case d < 30*24*time.Hour:
			buckets[1].Instances = append(buckets[1].Instances, inst.ID)
		case d < 90*24*time.Hour:
			buckets[2].Instances = append(buckets[2].Instances, inst.ID)
		default:
			buckets[3].Instances = append(buckets[3].Instances, inst.ID)
		}
	}
	return buckets
}
